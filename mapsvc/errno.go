package mapsvc

import "github.com/valversity/ngnfs-go/cmn/cos"

// A small slice of the errno-family codes the wire protocol's Err field
// carries. The map core never needs the whole table: only the handful
// the map daemon itself can produce or a client needs to recognize.
const (
	errnoEINVAL = 22
	errnoENOMEM = 12
)

// errnoToKind translates a negative errno-family code into the local
// error taxonomy.
func errnoToKind(errno int32) cos.Kind {
	switch -errno {
	case errnoENOMEM:
		return cos.KindNoMemory
	case errnoEINVAL:
		return cos.KindInvalidArg
	default:
		return cos.KindIO
	}
}

func kindToErrno(k cos.Kind) int32 {
	switch k {
	case cos.KindNoMemory:
		return -errnoENOMEM
	case cos.KindInvalidArg:
		return -errnoEINVAL
	default:
		return -errnoEINVAL
	}
}
