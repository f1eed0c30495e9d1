package domain

import "errors"

var (
	// ErrAttemptNotFound is returned when a quiz attempt has not been started.
	ErrAttemptNotFound = errors.New("quiz attempt not found")
	// ErrBankNotFound indicates the question bank could not be loaded.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrQuestionNotFound indicates a submitted question ID is not part of the attempt.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionAnswered indicates the question was already answered in this attempt.
	ErrQuestionAnswered = errors.New("question already answered")
	// ErrEmptyBank indicates a bank with no questions was ingested.
	ErrEmptyBank = errors.New("question bank has no questions")
	// ErrInvalidQuestion indicates a question violates the bank invariants.
	ErrInvalidQuestion = errors.New("question violates bank invariants")
)
