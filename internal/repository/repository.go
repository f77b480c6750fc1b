package repository

import "errors"

// Errores compartidos por los repositorios Mongo.
var (
	ErrNotFound          = errors.New("documento no encontrado")
	ErrInsufficientStock = errors.New("stock insuficiente")
)
