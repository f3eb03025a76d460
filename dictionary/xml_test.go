package dictionary

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleXML = `<fix type='FIX' major='4' minor='4' servicepack='0'>
  <fields>
    <field number='35' name='MsgType' type='STRING'>
      <value enum='0' description='HEARTBEAT'/>
      <value enum='A' description='LOGON'/>
    </field>
    <field number='34' name='MsgSeqNum' type='SEQNUM'/>
    <field number='49' name='SenderCompID' type='STRING'/>
  </fields>
  <components>
    <component name='Instrument'>
      <field name='Symbol' required='Y'/>
    </component>
  </components>
  <messages>
    <message name='Logon' msgtype='A' msgcat='admin'>
      <field name='SenderCompID' required='Y'/>
      <component name='Instrument' required='N'/>
      <group name='NoMsgTypes' required='N'>
        <field name='MsgType' required='Y'/>
      </group>
    </message>
  </messages>
</fix>`

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sampleXML), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSample(t, dir, "FIX44.xml")

	d, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if got := d.BeginString(); got != "FIX.4.4" {
		t.Fatalf("BeginString = %q, want FIX.4.4", got)
	}

	field, ok := d.FieldByNumber(35)
	if !ok || field.Name != "MsgType" {
		t.Fatalf("FieldByNumber(35) = %+v, %v", field, ok)
	}

	if len(field.Enums) != 2 {
		t.Fatalf("expected 2 enums, got %d", len(field.Enums))
	}

	msg, ok := d.MessageByType("A")
	if !ok || msg.Name != "Logon" {
		t.Fatalf("MessageByType(A) = %+v, %v", msg, ok)
	}

	if len(msg.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(msg.Members))
	}

	if msg.Members[1].Kind != MemberComponent || msg.Members[1].Name != "Instrument" {
		t.Fatalf("unexpected component member: %+v", msg.Members[1])
	}

	if msg.Members[2].Kind != MemberGroup || len(msg.Members[2].Children) != 1 {
		t.Fatalf("unexpected group member: %+v", msg.Members[2])
	}

	comp, ok := d.ComponentByName("Instrument")
	if !ok || len(comp) != 1 || comp[0].Name != "Symbol" || !comp[0].Required {
		t.Fatalf("ComponentByName(Instrument) = %+v, %v", comp, ok)
	}
}

const sampleWithHeaderXML = `<fix type='FIX' major='4' minor='4' servicepack='0'>
  <fields>
    <field number='8' name='BeginString' type='STRING'/>
    <field number='34' name='MsgSeqNum' type='SEQNUM'/>
    <field number='10' name='CheckSum' type='STRING'/>
  </fields>
  <components></components>
  <header>
    <field name='BeginString' required='Y'/>
    <field name='MsgSeqNum' required='Y'/>
  </header>
  <trailer>
    <field name='CheckSum' required='Y'/>
  </trailer>
  <messages></messages>
</fix>`

func TestLoadFileHeaderTrailerAndFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "FIX44.xml")

	if err := os.WriteFile(path, []byte(sampleWithHeaderXML), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	d, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if len(d.Fields()) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(d.Fields()))
	}

	header := d.Header()
	if len(header) != 2 || header[0].Name != "BeginString" || !header[0].Required {
		t.Fatalf("unexpected header: %+v", header)
	}

	trailer := d.Trailer()
	if len(trailer) != 1 || trailer[0].Name != "CheckSum" {
		t.Fatalf("unexpected trailer: %+v", trailer)
	}
}

func TestLoadFileMissingRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.xml")

	if err := os.WriteFile(path, []byte("<notfix></notfix>"), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error loading non-fix root element")
	}
}

func TestIsRequiredAttr(t *testing.T) {
	cases := map[string]bool{"Y": true, "y": true, "N": false, "": false, "yes": true}
	for in, want := range cases {
		if got := isRequiredAttr(in); got != want {
			t.Errorf("isRequiredAttr(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestBuildBeginString(t *testing.T) {
	if got := buildBeginString("FIXT", 1, 1); got != "FIXT.1.1" {
		t.Errorf("buildBeginString(FIXT,1,1) = %q", got)
	}

	if got := buildBeginString("FIX", 4, 2); got != "FIX.4.2" {
		t.Errorf("buildBeginString(FIX,4,2) = %q", got)
	}
}
