// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/sqldbc/hdbcore/internal/protocol/encoding"
)

type parameterOptions int8

const (
	poMandatory parameterOptions = 0x01
	poOptional  parameterOptions = 0x02
	poDefault   parameterOptions = 0x04
)

var parameterOptionsText = map[parameterOptions]string{
	poMandatory: "mandatory",
	poOptional:  "optional",
	poDefault:   "default",
}

func (k parameterOptions) String() string {
	t := make([]string, 0, len(parameterOptionsText))
	for option, text := range parameterOptionsText {
		if (k & option) != 0 {
			t = append(t, text)
		}
	}
	return fmt.Sprintf("%v", t)
}

type parameterMode int8

const (
	pmIn    parameterMode = 0x01
	pmInout parameterMode = 0x02
	pmOut   parameterMode = 0x04
)

var parameterModeText = map[parameterMode]string{
	pmIn:    "in",
	pmInout: "inout",
	pmOut:   "out",
}

func (k parameterMode) String() string {
	t := make([]string, 0, len(parameterModeText))
	for mode, text := range parameterModeText {
		if (k & mode) != 0 {
			t = append(t, text)
		}
	}
	return fmt.Sprintf("%v", t)
}

// parameterField contains database field attributes for a bound parameter
// (input, output or both), as described by a parameter metadata part.
type parameterField struct {
	parameterOptions parameterOptions
	tc               typeCode
	mode             parameterMode
	fraction         int16
	length           int16
	nameOffset       uint32
	name             string
}

func (f *parameterField) String() string {
	return fmt.Sprintf("parameterOptions %s typeCode %s mode %s fraction %d length %d name %s",
		f.parameterOptions, f.tc, f.mode, f.fraction, f.length, f.name)
}

// TypeName returns the database type name of the field.
func (f *parameterField) TypeName() string { return f.tc.typeName() }

// TypeLength returns the type length of the field.
func (f *parameterField) TypeLength() (int64, bool) {
	if f.tc.isVariableLength() {
		return int64(f.length), true
	}
	return 0, false
}

// TypePrecisionScale returns the type precision and scale (decimal types) of the field.
func (f *parameterField) TypePrecisionScale() (int64, int64, bool) {
	if f.tc.isDecimalType() {
		return int64(f.length), int64(f.fraction), true
	}
	return 0, 0, false
}

// Nullable returns true if the field may be null, false otherwise.
func (f *parameterField) Nullable() bool { return f.parameterOptions == poOptional }

// In returns true if the field is an input or input/output parameter.
func (f *parameterField) In() bool { return f.mode == pmInout || f.mode == pmIn }

// Out returns true if the field is an output or input/output parameter.
func (f *parameterField) Out() bool { return f.mode == pmInout || f.mode == pmOut }

// Name returns the parameter name.
func (f *parameterField) Name() string { return f.name }

func (f *parameterField) decode(dec *encoding.Decoder) {
	f.parameterOptions = parameterOptions(dec.Int8())
	f.tc = typeCode(dec.Int8())
	f.mode = parameterMode(dec.Int8())
	dec.Skip(1) // filler
	f.nameOffset = dec.Uint32()
	f.length = dec.Int16()
	f.fraction = dec.Int16()
	dec.Skip(4) // filler
}

func newParameterFields(size int) []*parameterField {
	return make([]*parameterField, size)
}

// parameterMetadata describes the in/out parameters of a prepared statement
// (the prepare reply's pkParameterMetadata part).
type parameterMetadata struct {
	parameterFields []*parameterField
}

func (m *parameterMetadata) String() string {
	return fmt.Sprintf("parameter fields %v", m.parameterFields)
}

func (m *parameterMetadata) decode(dec *encoding.Decoder, ph *partHeader) error {
	m.parameterFields = newParameterFields(ph.numArg())

	names := fieldNames{}

	for i := 0; i < len(m.parameterFields); i++ {
		f := new(parameterField)
		f.decode(dec)
		m.parameterFields[i] = f
		names.insert(f.nameOffset)
	}

	names.decode(dec)

	for _, f := range m.parameterFields {
		f.name = names.name(f.nameOffset)
	}
	return dec.Error()
}

// inputParameters carries the bound argument values for one (or, for a
// batch, several) execution of a prepared statement. fields describes the
// parameter layout to encode against, normally the In() subset of a
// previously decoded parameterMetadata.
type inputParameters struct {
	fields []*parameterField
	values []any // len(values) == len(fields) * row count
}

func (p *inputParameters) String() string {
	return fmt.Sprintf("fields %v values %v", p.fields, p.values)
}

func (p *inputParameters) size() int {
	cnt := len(p.fields)
	if cnt == 0 {
		return 0
	}
	size := 0
	for i, v := range p.values {
		f := p.fields[i%cnt]
		if v == nil {
			size += nullValueSize(f.tc)
			continue
		}
		size += valueSize(f.tc, v)
	}
	return size
}

func (p *inputParameters) numArg() int {
	cnt := len(p.fields)
	if cnt == 0 {
		return 0
	}
	return len(p.values) / cnt
}

func (p *inputParameters) encode(enc *encoding.Encoder) error {
	cnt := len(p.fields)
	if cnt == 0 {
		return nil
	}
	for i, v := range p.values {
		f := p.fields[i%cnt]
		if err := encodeVal(enc, f.tc, v); err != nil {
			return err
		}
	}
	return enc.Error()
}

func (p *inputParameters) decode(dec *encoding.Decoder, ph *partHeader) error {
	cnt := len(p.fields)
	p.values = newFieldValues(ph.numArg() * cnt)
	for i := range p.values {
		f := p.fields[i%cnt]
		var err error
		if p.values[i], err = decodeRes(dec, f.tc); err != nil {
			return err
		}
	}
	return dec.Error()
}

// outputParameters carries the INOUT/OUT argument values returned by a call
// reply. fields is the Out() subset of the statement's parameterMetadata.
type outputParameters struct {
	fields []*parameterField
	values []any
}

func (p *outputParameters) String() string {
	return fmt.Sprintf("output parameters: fields %v values %v", p.fields, p.values)
}

func (p *outputParameters) decode(dec *encoding.Decoder, ph *partHeader) error {
	p.values = newFieldValues(len(p.fields))
	for i, f := range p.fields {
		var err error
		if p.values[i], err = decodeRes(dec, f.tc); err != nil {
			return err
		}
	}
	return dec.Error()
}

// nullValueSize and valueSize give a conservative wire-size estimate used to
// size the part header's bufferLength/bufferSize prefix before encoding; the
// encoder's own write buffer grows lazily, so overestimating is harmless.
func nullValueSize(tc typeCode) int {
	if tc.isVariableLength() || tc.isLob() {
		return 1
	}
	return 16
}

func valueSize(tc typeCode, v any) int {
	switch b := v.(type) {
	case []byte:
		return len(b) + 9
	case string:
		return len(b)*3 + 9
	default:
		return 16
	}
}
