package mutationType

import (
	"kaviar/models/constants"
)

const (
	Unknown constants.MutationType = ""

	Snp       constants.MutationType = "snp"
	Insertion constants.MutationType = "ins"
	Deletion  constants.MutationType = "del"
	Delins    constants.MutationType = "delins"
)

func All() []constants.MutationType {
	return []constants.MutationType{Snp, Insertion, Deletion, Delins}
}
