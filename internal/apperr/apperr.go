package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStore      Kind = "store"
	KindForbidden  Kind = "forbidden"
	KindUnexpected Kind = "unexpected"
)

// UnexpectedMessage sınıflandırılamayan hatalarda kullanıcıya dönen mesaj.
const UnexpectedMessage = "Beklenmeyen bir hata oluştu, lütfen tekrar deneyin"

type Error struct {
	Kind    Kind
	Message string
	// Aynı isteğin tekrar denenmesi anlamlı mı (ör. eşzamanlı slug çakışması)
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// Store veritabanı hatasını sınıflandırarak sarar. Mesaj store'un kendi
// mesajıdır, yorumlanmaz.
func Store(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Message: "Kayıt zaten mevcut", Err: err}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Message: "Kayıt bulunamadı", Err: err}
	}
	return &Error{Kind: KindStore, Message: err.Error(), Err: err}
}

// Retryable eşzamanlı yazma çakışmalarını tekrar denenebilir olarak işaretler.
func Retryable(err error) error {
	e := Store(err)
	if e.Kind == KindConflict {
		e.Retryable = true
		e.Message = "Eşzamanlı bir işlemle çakışma oldu, lütfen tekrar deneyin"
	}
	return e
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

func IsRetryable(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Retryable
}

// ToFiber servis hatasını HTTP katmanının beklediği fiber.Error'a çevirir.
func ToFiber(err error) *fiber.Error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	var appErr *Error
	if !errors.As(err, &appErr) {
		return fiber.NewError(fiber.StatusInternalServerError, UnexpectedMessage)
	}
	switch appErr.Kind {
	case KindValidation:
		return fiber.NewError(fiber.StatusBadRequest, appErr.Message)
	case KindNotFound:
		return fiber.NewError(fiber.StatusNotFound, appErr.Message)
	case KindConflict:
		return fiber.NewError(fiber.StatusConflict, appErr.Message)
	case KindForbidden:
		return fiber.NewError(fiber.StatusForbidden, appErr.Message)
	case KindStore:
		return fiber.NewError(fiber.StatusUnprocessableEntity, appErr.Message)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, UnexpectedMessage)
	}
}
