package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout the kaviar converter.
*/
type MutationType string

type Source string
