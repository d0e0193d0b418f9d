package file

import "errors"

var (
	ErrFileNotFound = errors.New("file not found")
	ErrAccessDenied = errors.New("file does not belong to this patient")
	ErrFileTooLarge = errors.New("file exceeds the upload limit")
	ErrEmptyFile    = errors.New("file is empty")
)
