package config

import "github.com/apiratorjs/circuit-breaker/xerrors"

// ErrValidationFailed 验证失败
var ErrValidationFailed = xerrors.New("configuration validation failed")

// WrapLoadError 包装加载错误
func WrapLoadError(err error, message string) error {
	if err == nil {
		return nil
	}
	return xerrors.Wrapf(err, "failed to load config: %s", message)
}
