package services

import (
	"errors"

	"servicos/internal/core"
	"servicos/internal/log"
	"servicos/internal/store"
)

var (
	ErrUnauthenticated = errors.New("not signed in")
	ErrNotAdmin        = errors.New("admin role required")
	ErrNotCurrentMonth = errors.New("record is outside the current month")
	ErrInFlight        = errors.New("operation already in flight for this record")
	ErrNotConfirmed    = errors.New("deletion not confirmed")
)

// OperationError wraps a store failure with the operation that issued it so
// the boundary can render an operation-specific message.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *OperationError) Unwrap() error { return e.Err }

var userMessages = []struct {
	err error
	msg string
}{
	{core.ErrEmptyTitle, "O número/código é obrigatório"},
	{core.ErrTitleTooLong, "O número/código deve ter no máximo 100 caracteres"},
	{core.ErrNegativePrice, "O preço deve ser maior ou igual a zero"},
	{core.ErrInvalidPrice, "Preço inválido"},
	{core.ErrUnknownServiceType, "Tipo de serviço desconhecido"},
	{core.ErrMissingOwner, "Usuário não autenticado"},
	{ErrUnauthenticated, "Usuário não autenticado"},
	{ErrNotAdmin, "Apenas administradores podem realizar esta ação"},
	{ErrNotCurrentMonth, "Apenas serviços do mês atual podem ser excluídos"},
	{ErrInFlight, "Operação em andamento para este serviço"},
	{ErrNotConfirmed, "Confirme a exclusão do serviço"},
	{store.ErrNotFound, "Serviço não encontrado"},
}

var operationMessages = map[string]string{
	log.OpCreate:    "Erro ao criar serviço",
	log.OpList:      "Erro ao carregar serviços",
	log.OpAnalytics: "Erro ao carregar dados",
	log.OpAuthorize: "Erro ao autorizar serviço",
	log.OpRevoke:    "Erro ao revogar autorização",
	log.OpDelete:    "Erro ao excluir serviço",
	log.OpFind:      "Erro ao verificar duplicados",
	log.OpRender:    "Erro ao gerar relatório",
}

// UserMessage converts any error into a readable message. Validation and
// authorization errors keep their meaning; store failures become a generic
// per-operation message and never expose the underlying text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		if msg, ok := operationMessages[opErr.Op]; ok {
			return msg
		}
	}
	return "Erro desconhecido"
}

// IsValidation reports whether err was raised before any store call because
// of bad input.
func IsValidation(err error) bool {
	for _, e := range []error{core.ErrEmptyTitle, core.ErrTitleTooLong, core.ErrNegativePrice,
		core.ErrInvalidPrice, core.ErrUnknownServiceType} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
