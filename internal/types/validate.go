package types

import "github.com/go-playground/validator/v10"

// validate is shared across records; validator caches struct metadata.
var validate = validator.New()
