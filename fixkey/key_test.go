package fixkey

import "testing"

func TestMsgTypeKey(t *testing.T) {
	msg := []byte("8=FIX.4.4\x019=5\x0135=A\x0110=000\x01")

	key := MsgTypeKey(msg)
	if key == 0 {
		t.Fatalf("expected non-zero key for MsgType=A")
	}

	other := MsgTypeKey([]byte("8=FIX.4.4\x019=5\x0135=0\x0110=000\x01"))
	if key == other {
		t.Fatalf("expected distinct keys for distinct MsgType values")
	}
}

func TestMsgTypeKeyMissingTag(t *testing.T) {
	msg := []byte("8=FIX.4.4\x019=5\x0110=000\x01")

	if got := MsgTypeKey(msg); got != 0 {
		t.Fatalf("expected zero key when tag 35 is absent, got %d", got)
	}
}

func TestExtractKeyPipeDelimited(t *testing.T) {
	msg := []byte("8=FIX.4.4|35=AE|10=000|")

	a := ExtractKey(msg, 35, '|', 0x01, MaxWidth)
	b := ExtractKey([]byte("35=AE"), 35, '|', 0x01, MaxWidth)

	if a != b {
		t.Fatalf("expected equal keys for equal tag values, got %d vs %d", a, b)
	}
}

func TestExtractKeyTruncatesToWidth(t *testing.T) {
	long := ExtractKey([]byte("35=ABCDEFGHIJ"), 35, '|', 0x01, 4)
	short := ExtractKey([]byte("35=ABCD"), 35, '|', 0x01, 4)

	if long != short {
		t.Fatalf("expected value to truncate at width, got %d vs %d", long, short)
	}
}

func TestExtractKeyDoesNotMatchLongerTagNumber(t *testing.T) {
	// Tag 3 must not match on the "35=" token.
	key := ExtractKey([]byte("35=A"), 3, '|', 0x01, MaxWidth)
	if key != 0 {
		t.Fatalf("expected zero key, tag 3 should not match token for tag 35")
	}
}
