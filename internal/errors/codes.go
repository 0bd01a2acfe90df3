package errors

// Diagnostic codes by category
// V100-V199: Parse errors
// V200-V299: Resolution errors
// V300-V399: I/O errors
// V400-V499: Compatibility warnings

const (
	// Parse errors (V100-V199)
	ErrInvalidNumber       = "V100"
	ErrInvalidBool         = "V101"
	ErrInvalidGuid         = "V102"
	ErrInvalidVector       = "V103"
	ErrInvalidPointer      = "V104"
	ErrMissingBrace        = "V105"
	ErrMalformedLine       = "V106"
	ErrInvalidHeader       = "V107"
	ErrInvalidEnum         = "V108"
	ErrInvalidBundleKind   = "V109"
	ErrMalformedRecord     = "V110"
	ErrUnexpectedEOF       = "V111"
	ErrDuplicateObject     = "V112"
	ErrRootCount           = "V113"
	ErrInvalidManifest     = "V114"
	ErrUnsupportedLinkKind = "V115"

	// Resolution errors (V200-V299)
	ErrUnknownField       = "V200"
	ErrUnknownType        = "V201"
	ErrDanglingPointer    = "V202"
	ErrUnresolvedDep      = "V203"
	ErrUnknownObject      = "V204"
	ErrUnknownBundle      = "V205"
	ErrUnknownSuperBundle = "V206"
	ErrMissingEntry       = "V207"
	ErrUnresolvedLink     = "V208"
	ErrAssetConflict      = "V209"
	ErrTagMismatch        = "V210"

	// I/O errors (V300-V399)
	ErrReadFile    = "V300"
	ErrWriteFile   = "V301"
	ErrMissingFile = "V302"
	ErrRemoveFile  = "V303"

	// Compatibility warnings (V400-V499)
	ErrVersionMismatch = "V400"
	ErrLegacyFormat    = "V401"
)
