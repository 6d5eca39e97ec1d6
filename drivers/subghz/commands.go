package subghz

// Opcode is a one-byte radio command identifier.
type Opcode uint8

// Command opcodes. Payload/response shapes are noted per entry; every
// response begins with the status byte.
const (
	OpResetStats          Opcode = 0x00 // w: 6x 0x00
	OpClrIrqStatus        Opcode = 0x02 // w: mask u16 BE
	OpClrError            Opcode = 0x07 // w: 0x00
	OpCfgDioIrq           Opcode = 0x08 // w: 4x u16 BE (mask, line1, line2, line3)
	OpWriteRegister       Opcode = 0x0D // w: addr u16 BE + data
	OpWriteBuffer         Opcode = 0x0E // w: offset + data
	OpGetStats            Opcode = 0x10 // r: status + 3x u16 BE
	OpGetPacketType       Opcode = 0x11 // r: status + type
	OpGetIrqStatus        Opcode = 0x12 // r: status + u16 BE
	OpGetRxBufferStatus   Opcode = 0x13 // r: status + payload len + buffer ptr
	OpGetPacketStatus     Opcode = 0x14 // r: status + 3 bytes
	OpGetRssiInst         Opcode = 0x15 // r: status + rssi
	OpGetError            Opcode = 0x17 // r: status + u16 LE
	OpReadRegister        Opcode = 0x1D // w: addr u16 BE; r: status + data
	OpReadBuffer          Opcode = 0x1E // w: offset; r: status + data
	OpSetStandby          Opcode = 0x80 // w: clock byte
	OpSetRx               Opcode = 0x82 // w: timeout u24 BE
	OpSetTx               Opcode = 0x83 // w: timeout u24 BE
	OpSetSleep            Opcode = 0x84 // w: cfg byte
	OpSetRfFrequency      Opcode = 0x86 // w: u32 BE frequency code
	OpSetCadParams        Opcode = 0x88 // w: 7 bytes
	OpCalibrate           Opcode = 0x89 // w: block mask
	OpSetPacketType       Opcode = 0x8A // w: type byte
	OpSetModulationParams Opcode = 0x8B // w: 4 (LoRa) / 8 (FSK) bytes
	OpSetPacketParams     Opcode = 0x8C // w: 6 (LoRa) / 9 (FSK) bytes
	OpSetTxParams         Opcode = 0x8E // w: power + ramp time
	OpSetBufferBaseAddr   Opcode = 0x8F // w: tx base + rx base
	OpSetTxRxFallbackMode Opcode = 0x93 // w: fallback byte
	OpSetRxDutyCycle      Opcode = 0x94 // w: rx u24 BE + sleep u24 BE
	OpSetPaConfig         Opcode = 0x95 // w: duty, hp max, pa sel, 0x01
	OpSetRegulatorMode    Opcode = 0x96 // w: regulator byte
	OpSetTcxoMode         Opcode = 0x97 // w: trim + timeout u24 BE
	OpCalibrateImage      Opcode = 0x98 // w: band lo + band hi
	OpStopRxTimerOnPreamb Opcode = 0x9F // w: bool byte
	OpSetLoRaSymbTimeout  Opcode = 0xA0 // w: symbol count
	OpGetStatus           Opcode = 0xC0 // r: status
	OpSetFs               Opcode = 0xC1
	OpSetCad              Opcode = 0xC5
	OpSetTxContinuousWave Opcode = 0xD1
	OpSetTxContinuousPre  Opcode = 0xD2
)

// Command is one bus transaction: an opcode, its payload bytes, and the
// number of bytes clocked back after them (status byte included).
// Immutable once built; consumed by Bus.Execute.
type Command struct {
	Op      Opcode
	Payload []byte
	RespLen int
}
