package serverutils

import "survey-payout-be/pkg/apperror"

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Response {
	return Response{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// AppErrorResponse carries the machine-readable kind and code of a domain error.
func AppErrorResponse(status int, err *apperror.Error) Response {
	return Response{
		Success: false,
		Code:    status,
		Message: err.Message,
		Kind:    string(err.Kind),
		Error:   err.Code,
	}
}
