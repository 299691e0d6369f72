// FilePath: internal/sui/txbuilder.go
package sui

import (
	"fmt"

	"github.com/verdantlabs/chainsense/internal/errors"
	"github.com/verdantlabs/chainsense/internal/models"
)

// Fixed on-chain entry point. The argument order of the call is a hard
// contract with the receiving Move function: reordering fields that share a
// type produces wrong on-chain data with no type error.
const (
	MoveModule   = "sensor_storage"
	MoveFunction = "store_sensor_data"
)

// BCS variant tags for the transaction shapes emitted below
const (
	tagTransactionDataV1 = 0x00
	tagProgrammableTx    = 0x00
	tagCallArgPure       = 0x00
	tagCallArgObject     = 0x01
	tagObjectArgShared   = 0x01
	tagCommandMoveCall   = 0x00
	tagArgumentInput     = 0x01
	tagExpirationNone    = 0x00
)

// One shared clock object plus the seven pure call arguments
const callInputs = 8

// TxContext carries everything beyond the reading itself that a complete,
// externally-signable transaction needs. Sender and gas must be explicit even
// when signing happens elsewhere: the serialized bytes are signed blind and
// nothing about them can be implicit.
type TxContext struct {
	Sender     string
	PackageID  string
	Clock      SharedObjectRef
	GasPayment ObjectRef
	GasPrice   uint64
	GasBudget  uint64
}

// SensorCall is the decoded form of a sensor transaction, used to verify a
// byte sequence round-trips into the same logical call.
type SensorCall struct {
	Reading    models.SensorReading
	Clock      SharedObjectRef
	PackageID  string
	Module     string
	Function   string
	Sender     string
	GasPayment ObjectRef
	GasOwner   string
	GasPrice   uint64
	GasBudget  uint64
}

// BuildSensorTransaction serializes one store_sensor_data invocation into the
// ledger's TransactionData V1 byte layout. Encoding is deterministic: the
// same reading and context always produce byte-identical output, which the
// external signing path requires. The signer signs the raw bytes and the
// ledger rejects the submission if they drift between build and submit.
func BuildSensorTransaction(reading models.SensorReading, txc TxContext) ([]byte, error) {
	if txc.PackageID == "" {
		return nil, errors.NewConfigurationError("sensor package id is not configured", nil)
	}
	if txc.Sender == "" {
		return nil, errors.NewConfigurationError("sender address is not configured", nil)
	}
	if txc.Clock.ObjectID == "" {
		return nil, errors.NewConfigurationError("clock object id is not configured", nil)
	}
	if txc.Clock.Mutable {
		return nil, errors.NewConfigurationError("clock object reference must be immutable", nil)
	}
	if txc.GasPayment.ObjectID == "" {
		return nil, errors.NewConfigurationError("gas payment reference is not resolved", nil)
	}
	if txc.GasBudget == 0 || txc.GasPrice == 0 {
		return nil, errors.NewConfigurationError("gas budget and gas price must be set", nil)
	}

	pkg, err := AddressBytes(txc.PackageID)
	if err != nil {
		return nil, errors.NewConfigurationError("invalid sensor package id", err)
	}
	sender, err := AddressBytes(txc.Sender)
	if err != nil {
		return nil, errors.NewConfigurationError("invalid sender address", err)
	}
	clockID, err := AddressBytes(txc.Clock.ObjectID)
	if err != nil {
		return nil, errors.NewConfigurationError("invalid clock object id", err)
	}
	gasID, err := AddressBytes(txc.GasPayment.ObjectID)
	if err != nil {
		return nil, errors.NewConfigurationError("invalid gas object id", err)
	}
	gasDigest, err := DigestBytes(txc.GasPayment.Digest)
	if err != nil {
		return nil, errors.NewConfigurationError("invalid gas object digest", err)
	}

	w := newBCSWriter()
	w.writeU8(tagTransactionDataV1)
	w.writeU8(tagProgrammableTx)

	// Inputs: four u64 pures, three string pures, then the shared clock.
	// The fixed order [temperature, humidity, ec, ph, device_id,
	// sensor_type, location, clock] matches the Move signature.
	w.writeULEB(callInputs)
	writePureU64(w, reading.TemperatureScaled)
	writePureU64(w, reading.HumidityScaled)
	writePureU64(w, reading.Conductivity)
	writePureU64(w, reading.AcidityScaled)
	writePureString(w, reading.DeviceID)
	writePureString(w, reading.SensorType)
	writePureString(w, reading.Location)

	w.writeU8(tagCallArgObject)
	w.writeU8(tagObjectArgShared)
	w.writeFixed(clockID[:])
	w.writeU64(txc.Clock.InitialSharedVersion)
	w.writeBool(txc.Clock.Mutable)

	// One MoveCall command referencing all eight inputs in order
	w.writeULEB(1)
	w.writeU8(tagCommandMoveCall)
	w.writeFixed(pkg[:])
	w.writeString(MoveModule)
	w.writeString(MoveFunction)
	w.writeULEB(0) // no type arguments
	w.writeULEB(callInputs)
	for i := 0; i < callInputs; i++ {
		w.writeU8(tagArgumentInput)
		w.writeU16(uint16(i))
	}

	w.writeFixed(sender[:])

	// Gas data: one payment coin, owner, price, budget
	w.writeULEB(1)
	w.writeFixed(gasID[:])
	w.writeU64(txc.GasPayment.Version)
	w.writeVec(gasDigest[:])
	w.writeFixed(sender[:])
	w.writeU64(txc.GasPrice)
	w.writeU64(txc.GasBudget)

	w.writeU8(tagExpirationNone)

	return w.bytes(), nil
}

// writePureU64 emits a Pure call argument holding a little-endian u64
func writePureU64(w *bcsWriter, v uint64) {
	w.writeU8(tagCallArgPure)
	w.writeULEB(8)
	w.writeU64(v)
}

// writePureString emits a Pure call argument holding a BCS string. The pure
// payload is itself length-prefixed, so the string's own ULEB length sits
// inside the outer one.
func writePureString(w *bcsWriter, s string) {
	inner := newBCSWriter()
	inner.writeString(s)
	w.writeU8(tagCallArgPure)
	w.writeVec(inner.bytes())
}

// DecodeSensorTransaction parses bytes produced by BuildSensorTransaction
// back into the logical call. It rejects any layout this system does not
// emit; it is a verification tool, not a general transaction parser.
func DecodeSensorTransaction(txBytes []byte) (*SensorCall, error) {
	r := newBCSReader(txBytes)

	version, err := r.readU8()
	if err != nil {
		return nil, err
	}
	if version != tagTransactionDataV1 {
		return nil, fmt.Errorf("unsupported transaction data version 0x%02x", version)
	}
	kind, err := r.readU8()
	if err != nil {
		return nil, err
	}
	if kind != tagProgrammableTx {
		return nil, fmt.Errorf("unsupported transaction kind 0x%02x", kind)
	}

	numInputs, err := r.readULEB()
	if err != nil {
		return nil, err
	}
	if numInputs != callInputs {
		return nil, fmt.Errorf("expected %d inputs, found %d", callInputs, numInputs)
	}

	call := &SensorCall{}
	if call.Reading.TemperatureScaled, err = readPureU64(r); err != nil {
		return nil, fmt.Errorf("temperature input: %w", err)
	}
	if call.Reading.HumidityScaled, err = readPureU64(r); err != nil {
		return nil, fmt.Errorf("humidity input: %w", err)
	}
	if call.Reading.Conductivity, err = readPureU64(r); err != nil {
		return nil, fmt.Errorf("ec input: %w", err)
	}
	if call.Reading.AcidityScaled, err = readPureU64(r); err != nil {
		return nil, fmt.Errorf("ph input: %w", err)
	}
	if call.Reading.DeviceID, err = readPureString(r); err != nil {
		return nil, fmt.Errorf("device_id input: %w", err)
	}
	if call.Reading.SensorType, err = readPureString(r); err != nil {
		return nil, fmt.Errorf("sensor_type input: %w", err)
	}
	if call.Reading.Location, err = readPureString(r); err != nil {
		return nil, fmt.Errorf("location input: %w", err)
	}

	if err = expectU8(r, tagCallArgObject, "clock call arg"); err != nil {
		return nil, err
	}
	if err = expectU8(r, tagObjectArgShared, "clock object arg"); err != nil {
		return nil, err
	}
	clockID, err := r.readFixed(32)
	if err != nil {
		return nil, err
	}
	var clockAddr [32]byte
	copy(clockAddr[:], clockID)
	call.Clock.ObjectID = AddressHex(clockAddr)
	if call.Clock.InitialSharedVersion, err = r.readU64(); err != nil {
		return nil, err
	}
	if call.Clock.Mutable, err = r.readBool(); err != nil {
		return nil, err
	}

	numCommands, err := r.readULEB()
	if err != nil {
		return nil, err
	}
	if numCommands != 1 {
		return nil, fmt.Errorf("expected 1 command, found %d", numCommands)
	}
	if err = expectU8(r, tagCommandMoveCall, "command"); err != nil {
		return nil, err
	}
	pkg, err := r.readFixed(32)
	if err != nil {
		return nil, err
	}
	var pkgAddr [32]byte
	copy(pkgAddr[:], pkg)
	call.PackageID = AddressHex(pkgAddr)
	if call.Module, err = r.readString(); err != nil {
		return nil, err
	}
	if call.Function, err = r.readString(); err != nil {
		return nil, err
	}
	numTypeArgs, err := r.readULEB()
	if err != nil {
		return nil, err
	}
	if numTypeArgs != 0 {
		return nil, fmt.Errorf("expected no type arguments, found %d", numTypeArgs)
	}
	numArgs, err := r.readULEB()
	if err != nil {
		return nil, err
	}
	if numArgs != callInputs {
		return nil, fmt.Errorf("expected %d call arguments, found %d", callInputs, numArgs)
	}
	for i := 0; i < callInputs; i++ {
		if err = expectU8(r, tagArgumentInput, "argument kind"); err != nil {
			return nil, err
		}
		idx, err := r.readU16()
		if err != nil {
			return nil, err
		}
		if int(idx) != i {
			return nil, fmt.Errorf("argument %d references input %d, want %d", i, idx, i)
		}
	}

	sender, err := r.readFixed(32)
	if err != nil {
		return nil, err
	}
	var senderAddr [32]byte
	copy(senderAddr[:], sender)
	call.Sender = AddressHex(senderAddr)

	numCoins, err := r.readULEB()
	if err != nil {
		return nil, err
	}
	if numCoins != 1 {
		return nil, fmt.Errorf("expected 1 gas coin, found %d", numCoins)
	}
	gasID, err := r.readFixed(32)
	if err != nil {
		return nil, err
	}
	var gasAddr [32]byte
	copy(gasAddr[:], gasID)
	call.GasPayment.ObjectID = AddressHex(gasAddr)
	if call.GasPayment.Version, err = r.readU64(); err != nil {
		return nil, err
	}
	gasDigest, err := r.readVec()
	if err != nil {
		return nil, err
	}
	if len(gasDigest) != 32 {
		return nil, fmt.Errorf("gas digest is %d bytes, want 32", len(gasDigest))
	}
	var digest [32]byte
	copy(digest[:], gasDigest)
	call.GasPayment.Digest = DigestString(digest)

	owner, err := r.readFixed(32)
	if err != nil {
		return nil, err
	}
	var ownerAddr [32]byte
	copy(ownerAddr[:], owner)
	call.GasOwner = AddressHex(ownerAddr)
	if call.GasPrice, err = r.readU64(); err != nil {
		return nil, err
	}
	if call.GasBudget, err = r.readU64(); err != nil {
		return nil, err
	}

	if err = expectU8(r, tagExpirationNone, "expiration"); err != nil {
		return nil, err
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after transaction", r.remaining())
	}
	return call, nil
}

func readPureU64(r *bcsReader) (uint64, error) {
	if err := expectU8(r, tagCallArgPure, "pure call arg"); err != nil {
		return 0, err
	}
	payload, err := r.readVec()
	if err != nil {
		return 0, err
	}
	if len(payload) != 8 {
		return 0, fmt.Errorf("pure u64 payload is %d bytes, want 8", len(payload))
	}
	inner := newBCSReader(payload)
	return inner.readU64()
}

func readPureString(r *bcsReader) (string, error) {
	if err := expectU8(r, tagCallArgPure, "pure call arg"); err != nil {
		return "", err
	}
	payload, err := r.readVec()
	if err != nil {
		return "", err
	}
	inner := newBCSReader(payload)
	s, err := inner.readString()
	if err != nil {
		return "", err
	}
	if inner.remaining() != 0 {
		return "", fmt.Errorf("%d trailing bytes in pure string payload", inner.remaining())
	}
	return s, nil
}

func expectU8(r *bcsReader, want uint8, what string) error {
	got, err := r.readU8()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%s: got 0x%02x, want 0x%02x", what, got, want)
	}
	return nil
}
