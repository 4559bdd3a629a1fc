package usuario

import "time"

// Demo devolve o cadastro de demonstração.
func Demo() []Usuario {
	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	mk := func(id, nome, cargo, email, perfil string, esp []string, offset time.Duration) Usuario {
		at := base.Add(offset)
		return Usuario{
			ID:             id,
			Nome:           nome,
			Cargo:          cargo,
			Telefone:       "(11) 99999-0000",
			Email:          email,
			PerfilAcessoID: perfil,
			Especialidades: esp,
			Status:         StatusAtivo,
			Documentos:     []Documento{},
			Auditoria: []RegistroAuditoria{{
				ID:        id + "-criacao",
				Tipo:      AuditCriacao,
				Descricao: "Usuário cadastrado",
				Autor:     "Administrador Master",
				Data:      at,
			}},
			CriadoEm:     at,
			AtualizadoEm: at,
		}
	}

	return []Usuario{
		mk("admin", "Administrador Master", "Sócio administrador", "admin@escritorio.com.br", "admin", []string{"Empresarial"}, 0),
		mk("usr-2", "Ana Souza", "Advogada", "ana.souza@escritorio.com.br", "advogado", []string{"Cível", "Família"}, 24*time.Hour),
		mk("usr-3", "Bruno Lima", "Advogado", "bruno.lima@escritorio.com.br", "advogado", []string{"Trabalhista"}, 48*time.Hour),
		mk("usr-4", "Carla Mendes", "Estagiária", "carla.mendes@escritorio.com.br", "estagiario", []string{"Cível"}, 72*time.Hour),
	}
}
