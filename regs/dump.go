package regs

import (
	"context"
	"fmt"
	"io"
)

var (
	dumpGlobal = []FieldID{
		FieldSwResetStatus, FieldIntStatus, FieldIntMask, FieldCacheMode,
		FieldTestPattern, FieldBatchCount, FieldEnableMask,
	}
	dumpInput = []FieldID{
		FieldInputWidth, FieldInputHeight, FieldInputFormat,
		FieldInputCropX, FieldInputCropY, FieldInputCropWidth, FieldInputCropHeight,
		FieldInputStripeEnable,
	}
	dumpChannel = []FieldID{
		FieldOutputEnable,
		FieldPolyEnable, FieldPolySrcX, FieldPolySrcY, FieldPolySrcWidth, FieldPolySrcHeight,
		FieldPolyDstWidth, FieldPolyDstHeight, FieldPolyHRatio, FieldPolyVRatio,
		FieldPolyHPhase, FieldPolyVPhase, FieldPolyHCoefIndex, FieldPolyVCoefIndex,
		FieldPostEnable, FieldPostDstWidth, FieldPostDstHeight, FieldPostHRatio, FieldPostVRatio,
		FieldDMAEnable, FieldDMAFormat, FieldDMAConv420, FieldDMAWidth, FieldDMAHeight,
		FieldDMAStrideY, FieldDMAStrideC, FieldDMAHeaderStrideY, FieldDMAHeaderStrideC,
		FieldDMAFlip, FieldDMACompression, FieldHWFCMode, FieldHWFCTotalBytes,
	}
	dumpHF = []FieldID{
		FieldHFEnable, FieldHFDMAEnable, FieldHFWidth, FieldHFHeight, FieldHFStride,
		FieldHFNoiseIndex, FieldHFWeight,
	}
)

// Dump writes the register groups (global, input, every output channel and
// the HF sub-path) one field per line. The output is meant for humans only.
func Dump(
	ctx context.Context,
	w io.Writer,
	r Reader,
	numChannels int,
) error {
	if err := dumpGroup(ctx, w, r, "global", dumpGlobal, 0); err != nil {
		return err
	}
	if err := dumpGroup(ctx, w, r, "input", dumpInput, 0); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "input.addr = 0x%x\n", ReadAddr(ctx, r, G(FieldInputAddrLo), G(FieldInputAddrHi))); err != nil {
		return err
	}
	for ch := 0; ch < numChannels; ch++ {
		group := fmt.Sprintf("output%d", ch)
		if err := dumpGroup(ctx, w, r, group, dumpChannel, ch); err != nil {
			return err
		}
		for plane := 0; plane < 4; plane++ {
			addr := ReadAddr(ctx, r, Buf(FieldDMAAddrLo, ch, 0, plane), Buf(FieldDMAAddrHi, ch, 0, plane))
			hdr := ReadAddr(ctx, r, Buf(FieldDMAHeaderAddrLo, ch, 0, plane), Buf(FieldDMAHeaderAddrHi, ch, 0, plane))
			if addr == 0 && hdr == 0 {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s.addr[%d] = 0x%x header 0x%x\n", group, plane, addr, hdr); err != nil {
				return err
			}
		}
	}
	return dumpGroup(ctx, w, r, "hf", dumpHF, 0)
}

func dumpGroup(
	ctx context.Context,
	w io.Writer,
	r Reader,
	group string,
	ids []FieldID,
	channel int,
) error {
	for _, id := range ids {
		f := G(id)
		if id >= FieldOutputEnable && id < FieldHFEnable {
			f = Ch(id, channel)
		}
		if _, err := fmt.Fprintf(w, "%s.%s = 0x%08x\n", group, id, r.Read(ctx, f)); err != nil {
			return err
		}
	}
	return nil
}
