package io

type Action int

type Input struct {
	Action  Action
	Release bool
}

const (
	Nothing Action = iota
	PadUp
	PadDown
	PadLeft
	PadRight
	PadSelect
	PadStart
	PadA
	PadB
)
