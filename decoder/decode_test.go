package decoder

import (
	"strings"
	"testing"
)

const decodeSampleXML = `<fix type='FIX' major='4' minor='4' servicepack='0'>
  <fields>
    <field number='8' name='BeginString' type='STRING'/>
    <field number='9' name='BodyLength' type='LENGTH'/>
    <field number='10' name='CheckSum' type='STRING'/>
    <field number='34' name='MsgSeqNum' type='SEQNUM'/>
    <field number='35' name='MsgType' type='STRING'/>
    <field number='49' name='SenderCompID' type='STRING'/>
    <field number='52' name='SendingTime' type='UTCTIMESTAMP'/>
    <field number='56' name='TargetCompID' type='STRING'/>
    <field number='98' name='EncryptMethod' type='INT'/>
    <field number='108' name='HeartBtInt' type='INT'/>
  </fields>
  <components>
  </components>
  <messages>
    <message name='Logon' msgtype='A' msgcat='admin'>
      <field name='EncryptMethod' required='Y'/>
      <field name='HeartBtInt' required='Y'/>
    </message>
  </messages>
</fix>`

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()

	d := NewDecoder()
	if err := d.LoadEmbeddedDictionary(decodeSampleXML); err != nil {
		t.Fatalf("LoadEmbeddedDictionary: %v", err)
	}

	return d
}

func logonMessage() string {
	fields := []string{"8=FIX.4.4", "35=A", "34=1", "49=SENDER", "56=TARGET", "52=20260101-00:00:00", "98=0", "108=30"}

	return strings.Join(fields, "\x01") + "\x01"
}

func TestDecodeReturnsOrderedNamedFields(t *testing.T) {
	d := newTestDecoder(t)

	msg := d.Decode(logonMessage())

	if msg.BeginString != "FIX.4.4" {
		t.Fatalf("BeginString = %q", msg.BeginString)
	}

	if msg.MsgType != "A" {
		t.Fatalf("MsgType = %q", msg.MsgType)
	}

	if !msg.StructurallyValid {
		t.Fatalf("expected structurally valid, errors: %v", msg.ValidationErrors)
	}

	var encryptMethod *DecodedField

	for i := range msg.Fields {
		if msg.Fields[i].Tag == 98 {
			encryptMethod = &msg.Fields[i]
		}
	}

	if encryptMethod == nil {
		t.Fatalf("expected tag 98 in decoded fields")
	}

	if encryptMethod.Name != "EncryptMethod" || encryptMethod.Type != "INT" {
		t.Fatalf("tag 98 name/type = %q/%q", encryptMethod.Name, encryptMethod.Type)
	}

	if encryptMethod.Typed.Kind != KindInt64 || encryptMethod.Typed.Int64 != 0 {
		t.Fatalf("tag 98 typed = %+v", encryptMethod.Typed)
	}
}

func TestDecodeMissingRequiredFieldReportsError(t *testing.T) {
	d := newTestDecoder(t)

	raw := strings.Join([]string{"8=FIX.4.4", "35=A", "34=1", "49=SENDER", "56=TARGET", "98=0"}, "\x01") + "\x01"

	msg := d.Decode(raw)

	if msg.StructurallyValid {
		t.Fatalf("expected structural validation failure for missing HeartBtInt")
	}

	found := false
	for _, e := range msg.ValidationErrors {
		if strings.Contains(e, "HeartBtInt") {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected a HeartBtInt error, got %v", msg.ValidationErrors)
	}
}

func TestDecodeObjectLookupChaining(t *testing.T) {
	d := newTestDecoder(t)

	obj := d.DecodeObject(logonMessage())

	if obj.MsgType != "A" {
		t.Fatalf("MsgType = %q", obj.MsgType)
	}

	l := obj.Lookup(108)
	if !l.Exists() {
		t.Fatalf("expected tag 108 to exist")
	}

	if l.Value().Kind != KindInt64 || l.Value().Int64 != 30 {
		t.Fatalf("tag 108 value = %+v", l.Value())
	}

	missing := obj.Lookup(9999)
	if missing.Exists() {
		t.Fatalf("expected tag 9999 to be absent")
	}
}

func TestDecodePipeDelimitedMessage(t *testing.T) {
	d := newTestDecoder(t)

	raw := "8=FIX.4.4|35=A|34=1|49=SENDER|56=TARGET|98=0|108=30|"

	msg := d.Decode(raw)

	if !msg.StructurallyValid {
		t.Fatalf("expected valid, errors: %v", msg.ValidationErrors)
	}

	if !strings.Contains(msg.NormalizedMessage, "\x01") {
		t.Fatalf("expected normalized message to use SOH")
	}
}

func TestRegisterTypeDecoderOverride(t *testing.T) {
	d := newTestDecoder(t)

	d.RegisterTypeDecoder("INT", func(value string) TypedValue {
		return TypedValue{Kind: KindString, Str: "overridden:" + value}
	})

	msg := d.Decode(logonMessage())

	for _, f := range msg.Fields {
		if f.Tag == 98 {
			if f.Typed.Kind != KindString || f.Typed.Str != "overridden:0" {
				t.Fatalf("override did not apply, got %+v", f.Typed)
			}
		}
	}
}

const applVerIDRoutingXML = `<fix type='FIX' major='4' minor='2' servicepack='0'>
  <fields>
    <field number='8' name='BeginString' type='STRING'/>
    <field number='35' name='MsgType' type='STRING'/>
    <field number='44' name='Price' type='PRICE'/>
  </fields>
  <components>
  </components>
  <messages>
  </messages>
</fix>`

// TestDecodeRoutesByApplVerIDWhenResolverDoesNotKnowTheTag covers an
// application field carried over a FIXT.1.1 transport: the session-header
// resolver only knows header/trailer tags, so an unknown tag like 44 must
// fall back to the ApplVerID-selected dictionary's declared type (PRICE,
// a DOUBLE alias) rather than defaulting to a bare string.
func TestDecodeRoutesByApplVerIDWhenResolverDoesNotKnowTheTag(t *testing.T) {
	d := NewDecoder()
	if err := d.LoadEmbeddedDictionary(applVerIDRoutingXML); err != nil {
		t.Fatalf("LoadEmbeddedDictionary: %v", err)
	}

	raw := strings.Join([]string{"8=FIXT.1.1", "35=D", "1128=4", "44=123.45"}, "\x01") + "\x01"

	msg := d.Decode(raw)

	var price *DecodedField

	for i := range msg.Fields {
		if msg.Fields[i].Tag == 44 {
			price = &msg.Fields[i]
		}
	}

	if price == nil {
		t.Fatalf("expected tag 44 in decoded fields")
	}

	if price.Typed.Kind != KindFloat64 || price.Typed.Float64 != 123.45 {
		t.Fatalf("tag 44 typed = %+v", price.Typed)
	}
}

func TestDecodeUnknownDictionarySkipsValidation(t *testing.T) {
	d := NewDecoder()

	raw := strings.Join([]string{"8=FIX.9.9", "35=Z", "34=1"}, "\x01") + "\x01"

	msg := d.Decode(raw)

	if !msg.StructurallyValid {
		t.Fatalf("expected StructurallyValid true when no dictionary is loaded")
	}

	if len(msg.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(msg.Fields))
	}
}
