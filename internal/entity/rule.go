package entity

import (
	"github.com/joseph-ayodele/pdf-fields/constants"
)

// KeywordRule locates a value next to the first line that contains Keyword.
// Rules are configuration: they are built once and never mutated while a batch runs.
type KeywordRule struct {
	Keyword     string              `json:"keyword" mapstructure:"keyword" validate:"required"`
	Direction   constants.Direction `json:"direction" mapstructure:"direction" validate:"required"`
	NumericOnly bool                `json:"numeric_only" mapstructure:"numeric_only"`
	Skip        int                 `json:"skip" mapstructure:"skip" validate:"min=0"`
	CharLimit   int                 `json:"char_limit" mapstructure:"char_limit" validate:"min=0"`
}
