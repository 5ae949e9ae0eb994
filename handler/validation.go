package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the intake validations on gin's binding
// engine. Called once from main before the router starts serving.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("founddate", validFoundDate)
	v.RegisterValidation("coordinate", validCoordinate)
}

// validFoundDate accepts YYYY-MM-DD, the format the form emits.
func validFoundDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// validCoordinate accepts a decimal latitude or longitude as a string,
// the way the map widget submits it.
func validCoordinate(fl validator.FieldLevel) bool {
	v, err := strconv.ParseFloat(fl.Field().String(), 64)
	if err != nil {
		return false
	}
	return v >= -180 && v <= 180
}
