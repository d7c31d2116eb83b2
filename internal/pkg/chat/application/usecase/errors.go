package usecase

import "errors"

// ErrPersistence indicates an infrastructure/repository failure inside a use case
var ErrPersistence = errors.New("chat use case persistence error")

// ErrUsernameTaken rejects registration with an already-claimed username
var ErrUsernameTaken = errors.New("username already exists")
