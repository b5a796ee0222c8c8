// Package validation checks structs against `validate:"..."` tags using
// go-playground/validator and reports failures as an *errors.AppError with
// code INVALID_INPUT and one entry per offending field.
//
//	type OrderRequest struct {
//	    UserID  int           `json:"user_id" validate:"required,gt=0"`
//	    Timeout time.Duration `json:"timeout" validate:"gte=0"`
//	}
//	err := validation.Validate(req)
package validation
