package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/escritoriodigital/api/internal/auth"
	"github.com/escritoriodigital/api/internal/config"
)

func main() {
	subject := flag.String("sub", "", "id do usuário interno (ex.: usr-2)")
	nome := flag.String("nome", "", "nome exibido")
	roles := flag.String("roles", "", "papéis separados por vírgula (ex.: admin)")
	ttl := flag.Duration("ttl", 0, "validade do token; padrão JWT_ACCESS_TTL")
	flag.Parse()

	if strings.TrimSpace(*subject) == "" {
		fmt.Fprintln(os.Stderr, "usage: token -sub <id> [-nome <nome>] [-roles admin] [-ttl 8h]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET ausente: defina AUTH_MODE=jwt e JWT_SECRET")
		os.Exit(1)
	}

	accessTTL := cfg.JWTAccessTTL
	if *ttl > 0 {
		accessTTL = *ttl
	}

	var roleList []string
	for _, role := range strings.Split(*roles, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roleList = append(roleList, role)
		}
	}

	token, _, err := auth.NewJWTManager(cfg.JWTSecret, accessTTL).GenerateAccessToken(auth.Identity{
		Subject: *subject,
		Nome:    *nome,
		Roles:   roleList,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "token error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
