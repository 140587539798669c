package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды в transport/web/v1)
var (
	ErrBadParams        = errors.New("bad_params")         // 400
	ErrUnauth           = errors.New("unauthorized")       // 401
	ErrForbidden        = errors.New("forbidden")          // 403
	ErrNotFound         = errors.New("not_found")          // 404
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrConflict         = errors.New("conflict")           // 409 (дубликат username)
	ErrConfig           = errors.New("config")             // 500, fail-fast при старте
	ErrUpstream         = errors.New("upstream")           // 500, ошибка Git-провайдера
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// Коды ошибок для конверта ответа
const (
	ErrCodeBadParams        = 1000
	ErrCodeUnauth           = 1001
	ErrCodeForbidden        = 1002
	ErrCodeNotFound         = 1003
	ErrCodeMethodNotAllowed = 1004
	ErrCodeConflict         = 1005
	ErrCodeUpstream         = 1006
	ErrCodeUnexpected       = 1999
)
