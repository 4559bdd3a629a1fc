package util

// UserError é um erro de domínio cuja mensagem pode ser mostrada ao usuário.
type UserError struct {
	msg string
}

// NewUserError cria um erro de domínio.
func NewUserError(msg string) error {
	return &UserError{msg: msg}
}

func (e *UserError) Error() string { return e.msg }

// UserFacing sinaliza que a mensagem é segura para exibição.
func (e *UserError) UserFacing() bool { return true }

// UserFacing sinaliza que a mensagem é segura para exibição.
func (e *ValidationError) UserFacing() bool { return true }
