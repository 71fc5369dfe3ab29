package scaling

const (
	// PrecisionShift is the amount of fractional bits of the ratios.
	PrecisionShift = 20

	// RatioOne is the fixed-point 1.0.
	RatioOne = uint32(1) << PrecisionShift

	PolyQualityRatioDown = 4
	PolyRatioUp          = 8
	PolyMaxRatioDown     = 16
	PostRatioDown        = 8

	// WideRatioDown and MaxRatioDown are the total (poly and post together)
	// down-scale bounds of the tiers B and C.
	WideRatioDown = PolyQualityRatioDown * PostRatioDown
	MaxRatioDown  = PolyMaxRatioDown * PostRatioDown

	DefaultPostChainMaxWidth = 1472

	AlignGeneral          = 2
	AlignCompressedWidth  = 32
	AlignCompressedHeight = 4

	// PostRatioGranularity: the post-chain ratio must be a multiple of
	// 1/PostRatioGranularity, otherwise the engine corrupts the last column.
	PostRatioGranularity = 256

	NumCoefficientSets = 7
)
