// Package regs is the named register field abstraction of the scaler engine.
package regs

import (
	"fmt"
)

type FieldID uint16

// Field is an addressable register field: the field kind plus the
// instance index (channel, sub-buffer, plane or coefficient tap).
type Field struct {
	ID    FieldID
	Index uint16
}

func (f Field) String() string {
	name := f.ID.String()
	if f.Index == 0 {
		return name
	}
	return fmt.Sprintf("%s[%d.%d.%d]", name, f.Channel(), f.Buffer(), f.Plane())
}

func (f Field) Channel() int {
	return int(f.Index >> 8)
}

func (f Field) Buffer() int {
	return int(f.Index>>2) & 0x3f
}

func (f Field) Plane() int {
	return int(f.Index & 0x3)
}

// Tap is the coefficient tap index of coefficient fields.
func (f Field) Tap() int {
	return int(f.Index & 0xff)
}

// G addresses a global field.
func G(id FieldID) Field {
	return Field{ID: id}
}

// Ch addresses a per-channel field.
func Ch(id FieldID, channel int) Field {
	return Field{ID: id, Index: uint16(channel) << 8}
}

// Buf addresses a per-channel, per-sub-buffer, per-plane field.
func Buf(id FieldID, channel, buffer, plane int) Field {
	return Field{ID: id, Index: uint16(channel)<<8 | uint16(buffer&0x3f)<<2 | uint16(plane&0x3)}
}

// Tap addresses a per-channel coefficient tap.
func Tap(id FieldID, channel, tap int) Field {
	return Field{ID: id, Index: uint16(channel)<<8 | uint16(tap&0xff)}
}

const (
	FieldUndefined = FieldID(iota)

	// global
	FieldSwReset
	FieldSwResetStatus
	FieldIntStatus
	FieldIntClear
	FieldIntMask
	FieldCacheMode
	FieldStartTrigger
	FieldTestPattern
	FieldBatchCount
	FieldEnableMask

	// input
	FieldInputWidth
	FieldInputHeight
	FieldInputFormat
	FieldInputCropX
	FieldInputCropY
	FieldInputCropWidth
	FieldInputCropHeight
	FieldInputStripeEnable
	FieldInputAddrLo
	FieldInputAddrHi

	// per output channel
	FieldOutputEnable
	FieldPolyEnable
	FieldPolySrcX
	FieldPolySrcY
	FieldPolySrcWidth
	FieldPolySrcHeight
	FieldPolyDstWidth
	FieldPolyDstHeight
	FieldPolyHRatio
	FieldPolyVRatio
	FieldPolyHPhase
	FieldPolyVPhase
	FieldPolyHCoefIndex
	FieldPolyVCoefIndex
	FieldPolyHCoef
	FieldPolyVCoef
	FieldPostEnable
	FieldPostDstWidth
	FieldPostDstHeight
	FieldPostHRatio
	FieldPostVRatio
	FieldPostHCoefIndex
	FieldPostVCoefIndex
	FieldPostHCoef
	FieldPostVCoef
	FieldClampYMin
	FieldClampYMax
	FieldClampCMin
	FieldClampCMax
	FieldDMAEnable
	FieldDMAFormat
	FieldDMAConv420
	FieldDMAWidth
	FieldDMAHeight
	FieldDMAStrideY
	FieldDMAStrideC
	FieldDMAHeaderStrideY
	FieldDMAHeaderStrideC
	FieldDMAFlip
	FieldDMACompression
	FieldDMAAddrLo
	FieldDMAAddrHi
	FieldDMAHeaderAddrLo
	FieldDMAHeaderAddrHi
	FieldHWFCMode
	FieldHWFCTotalBytes
	FieldHWFCIndexReset

	// high-frequency sub-path
	FieldHFEnable
	FieldHFDMAEnable
	FieldHFWidth
	FieldHFHeight
	FieldHFStride
	FieldHFAddrLo
	FieldHFAddrHi
	FieldHFNoiseIndex
	FieldHFWeight

	endOfField
)

var fieldNames = map[FieldID]string{
	FieldUndefined:         "undefined",
	FieldSwReset:           "sw_reset",
	FieldSwResetStatus:     "sw_reset_status",
	FieldIntStatus:         "int_status",
	FieldIntClear:          "int_clear",
	FieldIntMask:           "int_mask",
	FieldCacheMode:         "cache_mode",
	FieldStartTrigger:      "start_trigger",
	FieldTestPattern:       "test_pattern",
	FieldBatchCount:        "batch_count",
	FieldEnableMask:        "enable_mask",
	FieldInputWidth:        "input_width",
	FieldInputHeight:       "input_height",
	FieldInputFormat:       "input_format",
	FieldInputCropX:        "input_crop_x",
	FieldInputCropY:        "input_crop_y",
	FieldInputCropWidth:    "input_crop_width",
	FieldInputCropHeight:   "input_crop_height",
	FieldInputStripeEnable: "input_stripe_enable",
	FieldInputAddrLo:       "input_addr_lo",
	FieldInputAddrHi:       "input_addr_hi",
	FieldOutputEnable:      "output_enable",
	FieldPolyEnable:        "poly_enable",
	FieldPolySrcX:          "poly_src_x",
	FieldPolySrcY:          "poly_src_y",
	FieldPolySrcWidth:      "poly_src_width",
	FieldPolySrcHeight:     "poly_src_height",
	FieldPolyDstWidth:      "poly_dst_width",
	FieldPolyDstHeight:     "poly_dst_height",
	FieldPolyHRatio:        "poly_h_ratio",
	FieldPolyVRatio:        "poly_v_ratio",
	FieldPolyHPhase:        "poly_h_phase",
	FieldPolyVPhase:        "poly_v_phase",
	FieldPolyHCoefIndex:    "poly_h_coef_index",
	FieldPolyVCoefIndex:    "poly_v_coef_index",
	FieldPolyHCoef:         "poly_h_coef",
	FieldPolyVCoef:         "poly_v_coef",
	FieldPostEnable:        "post_enable",
	FieldPostDstWidth:      "post_dst_width",
	FieldPostDstHeight:     "post_dst_height",
	FieldPostHRatio:        "post_h_ratio",
	FieldPostVRatio:        "post_v_ratio",
	FieldPostHCoefIndex:    "post_h_coef_index",
	FieldPostVCoefIndex:    "post_v_coef_index",
	FieldPostHCoef:         "post_h_coef",
	FieldPostVCoef:         "post_v_coef",
	FieldClampYMin:         "clamp_y_min",
	FieldClampYMax:         "clamp_y_max",
	FieldClampCMin:         "clamp_c_min",
	FieldClampCMax:         "clamp_c_max",
	FieldDMAEnable:         "dma_enable",
	FieldDMAFormat:         "dma_format",
	FieldDMAConv420:        "dma_conv420",
	FieldDMAWidth:          "dma_width",
	FieldDMAHeight:         "dma_height",
	FieldDMAStrideY:        "dma_stride_y",
	FieldDMAStrideC:        "dma_stride_c",
	FieldDMAHeaderStrideY:  "dma_header_stride_y",
	FieldDMAHeaderStrideC:  "dma_header_stride_c",
	FieldDMAFlip:           "dma_flip",
	FieldDMACompression:    "dma_compression",
	FieldDMAAddrLo:         "dma_addr_lo",
	FieldDMAAddrHi:         "dma_addr_hi",
	FieldDMAHeaderAddrLo:   "dma_header_addr_lo",
	FieldDMAHeaderAddrHi:   "dma_header_addr_hi",
	FieldHWFCMode:          "hwfc_mode",
	FieldHWFCTotalBytes:    "hwfc_total_bytes",
	FieldHWFCIndexReset:    "hwfc_index_reset",
	FieldHFEnable:          "hf_enable",
	FieldHFDMAEnable:       "hf_dma_enable",
	FieldHFWidth:           "hf_width",
	FieldHFHeight:          "hf_height",
	FieldHFStride:          "hf_stride",
	FieldHFAddrLo:          "hf_addr_lo",
	FieldHFAddrHi:          "hf_addr_hi",
	FieldHFNoiseIndex:      "hf_noise_index",
	FieldHFWeight:          "hf_weight",
}

func (id FieldID) String() string {
	if name, ok := fieldNames[id]; ok {
		return name
	}
	return fmt.Sprintf("unknown_field_%d", uint16(id))
}

func (id FieldID) IsValid() bool {
	return id > FieldUndefined && id < endOfField
}
