package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	AppKey       ContextKey = "app"
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	UserKey      ContextKey = "user"
	RequestStart ContextKey = "requestStart"
)

// Validate is the shared validator instance used by controller DTOs.
var Validate = validator.New(validator.WithRequiredStructEnabled())
