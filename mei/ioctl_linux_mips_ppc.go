//go:build linux && (mips || mipsle || mips64 || mips64le || ppc64 || ppc64le || sparc64)

package mei

// ioctl number layout on mips, powerpc and sparc: 13 size bits and 3 direction bits.
const (
	iocNone  = 1
	iocRead  = 2
	iocWrite = 4
)

const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 13

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits
)
