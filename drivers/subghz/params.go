package subghz

import "subghz-go/x/mathx"

// PacketType selects the radio frame format and with it which parameter
// shapes are valid. Set once per session before modulation/packet
// parameters; changing it invalidates previously applied parameters.
type PacketType uint8

const (
	PacketTypeFSK  PacketType = 0x00
	PacketTypeLoRa PacketType = 0x01
	PacketTypeBPSK PacketType = 0x02
	PacketTypeMSK  PacketType = 0x03
)

func (t PacketType) String() string {
	switch t {
	case PacketTypeFSK:
		return "fsk"
	case PacketTypeLoRa:
		return "lora"
	case PacketTypeBPSK:
		return "bpsk"
	case PacketTypeMSK:
		return "msk"
	default:
		return "invalid"
	}
}

// SetPacketType configures the frame format. Applied modulation and
// packet parameters are invalidated and must be re-applied.
func (d *Device) SetPacketType(t PacketType) error {
	if t > PacketTypeMSK {
		return ErrParamRange
	}
	d.pb[0] = byte(t)
	if _, err := d.exec(Command{Op: OpSetPacketType, Payload: d.pb[:1]}); err != nil {
		return err
	}
	d.packetType = t
	d.typeSet = true
	d.pktSet = false
	d.maxPayload = 0
	return nil
}

// PacketType queries the radio's own view of the configured frame format.
func (d *Device) PacketType() (PacketType, error) {
	resp, err := d.exec(Command{Op: OpGetPacketType, RespLen: 2})
	if err != nil {
		return 0, err
	}
	return PacketType(resp[1]), nil
}

// requireType rejects a parameter struct whose shape does not match the
// configured packet type, before any bus traffic.
func (d *Device) requireType(t PacketType) error {
	if !d.typeSet || d.packetType != t {
		return ErrPacketTypeMismatch
	}
	return nil
}

// ---------------- LoRa parameters ----------------

// SpreadingFactor is the LoRa spreading factor (SF5..SF12).
type SpreadingFactor uint8

const (
	SF5  SpreadingFactor = 0x05
	SF6  SpreadingFactor = 0x06
	SF7  SpreadingFactor = 0x07
	SF8  SpreadingFactor = 0x08
	SF9  SpreadingFactor = 0x09
	SF10 SpreadingFactor = 0x0A
	SF11 SpreadingFactor = 0x0B
	SF12 SpreadingFactor = 0x0C
)

// LoRaBandwidth is the LoRa channel bandwidth (names in kHz).
type LoRaBandwidth uint8

const (
	LoRaBw7   LoRaBandwidth = 0x00 // 7.81 kHz
	LoRaBw10  LoRaBandwidth = 0x08 // 10.42 kHz
	LoRaBw15  LoRaBandwidth = 0x01 // 15.63 kHz
	LoRaBw20  LoRaBandwidth = 0x09 // 20.83 kHz
	LoRaBw31  LoRaBandwidth = 0x02 // 31.25 kHz
	LoRaBw41  LoRaBandwidth = 0x0A // 41.67 kHz
	LoRaBw62  LoRaBandwidth = 0x03 // 62.50 kHz
	LoRaBw125 LoRaBandwidth = 0x04
	LoRaBw250 LoRaBandwidth = 0x05
	LoRaBw500 LoRaBandwidth = 0x06
)

func validLoRaBw(bw LoRaBandwidth) bool {
	switch bw {
	case LoRaBw7, LoRaBw10, LoRaBw15, LoRaBw20, LoRaBw31,
		LoRaBw41, LoRaBw62, LoRaBw125, LoRaBw250, LoRaBw500:
		return true
	default:
		return false
	}
}

// CodingRate is the LoRa forward-error-correction rate.
type CodingRate uint8

const (
	Cr45 CodingRate = 0x01
	Cr46 CodingRate = 0x02
	Cr47 CodingRate = 0x03
	Cr48 CodingRate = 0x04
)

// LoRaModParams is the LoRa modulation shape.
type LoRaModParams struct {
	SF   SpreadingFactor
	BW   LoRaBandwidth
	CR   CodingRate
	LDRO bool // low data-rate optimization, required for long symbols
}

func (p LoRaModParams) validate() error {
	if !mathx.Between(uint8(p.SF), uint8(SF5), uint8(SF12)) ||
		!mathx.Between(uint8(p.CR), uint8(Cr45), uint8(Cr48)) ||
		!validLoRaBw(p.BW) {
		return ErrParamRange
	}
	return nil
}

// SetLoRaModParams applies LoRa modulation parameters. The packet type
// must already be LoRa.
func (d *Device) SetLoRaModParams(p LoRaModParams) error {
	if err := d.requireType(PacketTypeLoRa); err != nil {
		return err
	}
	if err := p.validate(); err != nil {
		return err
	}
	b := d.pb[:4]
	b[0] = byte(p.SF)
	b[1] = byte(p.BW)
	b[2] = byte(p.CR)
	b[3] = boolByte(p.LDRO)
	_, err := d.exec(Command{Op: OpSetModulationParams, Payload: b})
	return err
}

// LoRaPacketParams is the LoRa frame shape.
type LoRaPacketParams struct {
	PreambleLen uint16
	FixedLen    bool // implicit header: length not carried on air
	PayloadLen  uint8
	CrcOn       bool
	InvertIQ    bool
}

// SetLoRaPacketParams applies LoRa packet parameters. PayloadLen becomes
// the session's maximum payload and is checked against the configured
// buffer base addresses.
func (d *Device) SetLoRaPacketParams(p LoRaPacketParams) error {
	if err := d.requireType(PacketTypeLoRa); err != nil {
		return err
	}
	if p.PreambleLen == 0 {
		return ErrParamRange
	}
	if err := d.fitPayload(p.PayloadLen); err != nil {
		return err
	}
	b := d.pb[:6]
	b[0] = byte(p.PreambleLen >> 8)
	b[1] = byte(p.PreambleLen)
	b[2] = boolByte(p.FixedLen)
	b[3] = p.PayloadLen
	b[4] = boolByte(p.CrcOn)
	b[5] = boolByte(p.InvertIQ)
	if _, err := d.exec(Command{Op: OpSetPacketParams, Payload: b}); err != nil {
		return err
	}
	d.loraPkt = p
	d.pktSet = true
	d.maxPayload = p.PayloadLen
	return nil
}

// ---------------- FSK parameters ----------------

// PulseShape is the FSK Gaussian filter selection.
type PulseShape uint8

const (
	PulseShapeNone PulseShape = 0x00
	PulseShapeBt03 PulseShape = 0x08
	PulseShapeBt05 PulseShape = 0x09
	PulseShapeBt07 PulseShape = 0x0A
	PulseShapeBt10 PulseShape = 0x0B
)

// FskBandwidth is the FSK receiver bandwidth (names in Hz).
type FskBandwidth uint8

const (
	FskBw4800   FskBandwidth = 0x1F
	FskBw5800   FskBandwidth = 0x17
	FskBw7300   FskBandwidth = 0x0F
	FskBw9700   FskBandwidth = 0x1E
	FskBw11700  FskBandwidth = 0x16
	FskBw14600  FskBandwidth = 0x0E
	FskBw19500  FskBandwidth = 0x1D
	FskBw23400  FskBandwidth = 0x15
	FskBw29300  FskBandwidth = 0x0D
	FskBw39000  FskBandwidth = 0x1C
	FskBw46900  FskBandwidth = 0x14
	FskBw58600  FskBandwidth = 0x0C
	FskBw78200  FskBandwidth = 0x1B
	FskBw93800  FskBandwidth = 0x13
	FskBw117300 FskBandwidth = 0x0B
	FskBw156200 FskBandwidth = 0x1A
	FskBw187200 FskBandwidth = 0x12
	FskBw234300 FskBandwidth = 0x0A
	FskBw312000 FskBandwidth = 0x19
	FskBw373600 FskBandwidth = 0x11
	FskBw467000 FskBandwidth = 0x09
)

// FskModParams is the FSK modulation shape.
type FskModParams struct {
	BitrateBps uint32
	Shape      PulseShape
	BW         FskBandwidth
	FdevHz     uint32
}

func (p FskModParams) validate() error {
	if !mathx.Between(p.BitrateBps, 600, 300_000) || p.FdevHz == 0 {
		return ErrParamRange
	}
	return nil
}

// SetFskModParams applies FSK modulation parameters. The packet type
// must already be FSK.
func (d *Device) SetFskModParams(p FskModParams) error {
	if err := d.requireType(PacketTypeFSK); err != nil {
		return err
	}
	if err := p.validate(); err != nil {
		return err
	}
	// Bitrate is encoded as 32*fxtal/bps, frequency deviation with the
	// same 2^25/fxtal scaling as the RF frequency.
	br := mathx.RoundDiv[uint32](32*xtalHz, p.BitrateBps)
	fdev := freqCode(p.FdevHz)
	b := d.pb[:8]
	b[0] = byte(br >> 16)
	b[1] = byte(br >> 8)
	b[2] = byte(br)
	b[3] = byte(p.Shape)
	b[4] = byte(p.BW)
	b[5] = byte(fdev >> 16)
	b[6] = byte(fdev >> 8)
	b[7] = byte(fdev)
	_, err := d.exec(Command{Op: OpSetModulationParams, Payload: b})
	return err
}

// PreambleDetector is the FSK preamble-detector length gate.
type PreambleDetector uint8

const (
	PreambleDetectorOff    PreambleDetector = 0x00
	PreambleDetector8Bits  PreambleDetector = 0x04
	PreambleDetector16Bits PreambleDetector = 0x05
	PreambleDetector24Bits PreambleDetector = 0x06
	PreambleDetector32Bits PreambleDetector = 0x07
)

// AddrComp is the FSK address filtering selection.
type AddrComp uint8

const (
	AddrCompOff           AddrComp = 0x00
	AddrCompNode          AddrComp = 0x01
	AddrCompNodeBroadcast AddrComp = 0x02
)

// FskCrc is the FSK CRC configuration.
type FskCrc uint8

const (
	FskCrc1Byte    FskCrc = 0x00
	FskCrcOff      FskCrc = 0x01
	FskCrc2Byte    FskCrc = 0x02
	FskCrc1ByteInv FskCrc = 0x04
	FskCrc2ByteInv FskCrc = 0x06
)

// FskPacketParams is the FSK frame shape.
type FskPacketParams struct {
	PreambleLen  uint16
	PreambleDet  PreambleDetector
	SyncWordBits uint8 // length of the sync word in bits, max 64
	AddrComp     AddrComp
	VariableLen  bool
	PayloadLen   uint8
	Crc          FskCrc
	Whitening    bool
}

// SetFskPacketParams applies FSK packet parameters; analogous to the
// LoRa variant in its payload-length bookkeeping.
func (d *Device) SetFskPacketParams(p FskPacketParams) error {
	if err := d.requireType(PacketTypeFSK); err != nil {
		return err
	}
	if p.PreambleLen == 0 || p.SyncWordBits > 64 {
		return ErrParamRange
	}
	if err := d.fitPayload(p.PayloadLen); err != nil {
		return err
	}
	b := d.pb[:9]
	b[0] = byte(p.PreambleLen >> 8)
	b[1] = byte(p.PreambleLen)
	b[2] = byte(p.PreambleDet)
	b[3] = p.SyncWordBits
	b[4] = byte(p.AddrComp)
	b[5] = boolByte(p.VariableLen)
	b[6] = p.PayloadLen
	b[7] = byte(p.Crc)
	b[8] = boolByte(p.Whitening)
	if _, err := d.exec(Command{Op: OpSetPacketParams, Payload: b}); err != nil {
		return err
	}
	d.fskPkt = p
	d.pktSet = true
	d.maxPayload = p.PayloadLen
	return nil
}

// fitPayload checks a payload length against both buffer base addresses.
func (d *Device) fitPayload(n uint8) error {
	if err := checkBounds(BufferCapacity, d.txBase, int(n)); err != nil {
		return err
	}
	return checkBounds(BufferCapacity, d.rxBase, int(n))
}

func boolByte(v bool) byte {
	if v {
		return 0x01
	}
	return 0x00
}
