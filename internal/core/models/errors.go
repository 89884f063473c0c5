package models

import "errors"

var (
	ErrComponentExists = errors.New("component already attached")
	ErrAlreadyParented = errors.New("entity already has a parent")
	ErrParentCycle     = errors.New("parent cycle")
)
