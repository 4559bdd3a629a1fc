package cliente

// Demo devolve o cadastro de demonstração.
func Demo() ([]Cliente, []Processo) {
	clientes := []Cliente{
		{ID: "cli-1", Nome: "Maria Oliveira", Documento: "123.456.789-00", Email: "maria.oliveira@email.com", Telefone: "(11) 98888-1111", Endereco: "Rua das Flores, 120, São Paulo/SP"},
		{ID: "cli-2", Nome: "Construtora Horizonte Ltda.", Documento: "12.345.678/0001-90", Email: "juridico@horizonte.com.br", Telefone: "(11) 3333-2222", Endereco: "Av. Paulista, 1000, São Paulo/SP"},
		{ID: "cli-3", Nome: "Carlos Mendes", Documento: "987.654.321-00", Email: "carlos.mendes@email.com", Telefone: "(21) 97777-3333", Endereco: "Rua do Catete, 45, Rio de Janeiro/RJ"},
	}
	processos := []Processo{
		{ID: "proc-1", Numero: "1001234-56.2025.8.26.0100", Vara: "2ª Vara Cível de São Paulo", ClienteID: "cli-1"},
		{ID: "proc-2", Numero: "5004321-10.2025.5.02.0001", Vara: "1ª Vara do Trabalho de São Paulo", ClienteID: "cli-2"},
		{ID: "proc-3", Numero: "0801122-33.2024.8.19.0001", Vara: "5ª Vara Cível do Rio de Janeiro", ClienteID: "cli-3"},
	}
	return clientes, processos
}
