package errno

import (
	"errors"
	"fmt"
)

const (
	SuccessCode             = 0
	ServiceErrCode          = 10001
	RequestErrCode          = 10002
	AuthorizationFailedCode = 10003
	RecordNotFoundCode      = 10004
)

type ErrNo struct {
	ErrCode int64
	ErrMsg  string
}

func (e ErrNo) Error() string {
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{ErrCode: code, ErrMsg: msg}
}

func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

var (
	Success                = NewErrNo(SuccessCode, "Success")
	ServiceErr             = NewErrNo(ServiceErrCode, "Service is unable to start successfully")
	RequestErr             = NewErrNo(RequestErrCode, "Wrong request parameter")
	AuthorizationFailedErr = NewErrNo(AuthorizationFailedCode, "Authorization failed")
	RecordNotFoundErr      = NewErrNo(RecordNotFoundCode, "Record not found")
)

// ConvertErr 将任意error转换为ErrNo
func ConvertErr(err error) ErrNo {
	var e ErrNo
	if errors.As(err, &e) {
		return e
	}
	return ServiceErr.WithMessage(err.Error())
}
