/*
fixsession — FIX protocol decoder and session controller
Copyright (C) 2025 Steve Clarke <stephenlclarke@mac.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.

In accordance with section 13 of the AGPL, if you modify this program,
your modified version must prominently offer all users interacting with it
remotely through a computer network an opportunity to receive the source
code of your version.
*/

// Package session implements a session-level FIX controller: logon,
// sequencing, heartbeats, and the basic structural/CompID checks a
// counterparty expects before application traffic flows. It is strict
// where the decoder package is lenient: a malformed frame here is
// reported, not silently skipped, because a session must answer a
// counterparty rather than just display a message.
package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role is the endpoint's role in the FIX session.
type Role int

const (
	// RoleInitiator dials out and sends the initial logon.
	RoleInitiator Role = iota
	// RoleAcceptor listens and responds to an inbound logon.
	RoleAcceptor
)

// SessionState is the controller's high-level lifecycle state.
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateAwaitingLogon
	StateEstablished
	StateLogoutSent
	StateTerminated
)

func (s SessionState) String() string {
	switch s {
	case StateAwaitingLogon:
		return "AwaitingLogon"
	case StateEstablished:
		return "Established"
	case StateLogoutSent:
		return "LogoutSent"
	case StateTerminated:
		return "Terminated"
	default:
		return "Disconnected"
	}
}

// MessageDisposition classifies how an inbound frame was handled.
type MessageDisposition int

const (
	// Accepted means the message passed session checks.
	Accepted MessageDisposition = iota
	// OutOfSync means the message's sequence number did not match what
	// was expected.
	OutOfSync
	// Garbled means the message failed structural checks (body length,
	// checksum, or basic tag=value parsing).
	Garbled
)

func (d MessageDisposition) String() string {
	switch d {
	case OutOfSync:
		return "OutOfSync"
	case Garbled:
		return "Garbled"
	default:
		return "Accepted"
	}
}

// Field is a (tag, value) pair used when building application messages.
type Field struct {
	Tag   int
	Value string
}

// Action is the controller's reaction to one inbound message: the final
// disposition, any outbound frames that must be sent in order, and a set
// of human-readable events useful for logs and tests.
type Action struct {
	Disposition      MessageDisposition
	OutboundMessages []string
	Events           []string
}

const soh = "\x01"

// Controller is a session-level FIX endpoint. It is not safe for
// concurrent use from multiple goroutines without external
// synchronization, matching the single-threaded expectations of the
// session loop it is meant to be driven from.
type Controller struct {
	senderCompID             string
	targetCompID             string
	role                     Role
	beginString              string
	heartbeatIntervalSeconds int

	state                  SessionState
	expectedIncomingSeqNum uint32
	nextOutgoingSeqNum     uint32
	logonSent              bool
	logonReceived          bool

	streamBuffer strings.Builder
}

// New constructs a controller for one session endpoint. beginString
// defaults to "FIX.4.4" and heartbeatIntervalSeconds to 30 when given as
// the zero value.
func New(senderCompID, targetCompID string, role Role, beginString string, heartbeatIntervalSeconds int) *Controller {
	if beginString == "" {
		beginString = "FIX.4.4"
	}

	if heartbeatIntervalSeconds == 0 {
		heartbeatIntervalSeconds = 30
	}

	return &Controller{
		senderCompID:             senderCompID,
		targetCompID:             targetCompID,
		role:                     role,
		beginString:              beginString,
		heartbeatIntervalSeconds: heartbeatIntervalSeconds,
		state:                    StateDisconnected,
		expectedIncomingSeqNum:   1,
		nextOutgoingSeqNum:       1,
	}
}

// State returns the controller's current session state.
func (c *Controller) State() SessionState { return c.state }

// ExpectedIncomingSeqNum returns the next inbound MsgSeqNum (34) expected.
func (c *Controller) ExpectedIncomingSeqNum() uint32 { return c.expectedIncomingSeqNum }

// NextOutgoingSeqNum returns the next outbound MsgSeqNum (34) to be used.
func (c *Controller) NextOutgoingSeqNum() uint32 { return c.nextOutgoingSeqNum }

// SkipOutboundSequence advances the outbound sequence counter by delta,
// a test/simulation helper for exercising gap scenarios.
func (c *Controller) SkipOutboundSequence(delta uint32) { c.nextOutgoingSeqNum += delta }

func toChecksum(messageWithoutChecksum string) string {
	checksum := 0
	for i := 0; i < len(messageWithoutChecksum); i++ {
		checksum = (checksum + int(messageWithoutChecksum[i])) % 256
	}

	return fmt.Sprintf("%03d", checksum)
}

func parseUint(value string) (uint32, bool) {
	if value == "" {
		return 0, false
	}

	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, false
	}

	return uint32(n), true
}

func (c *Controller) buildMessageWithSeqNum(msgType string, fields []Field, seqNum uint32) string {
	var body strings.Builder

	body.WriteString("35=" + msgType + soh)
	body.WriteString("34=" + strconv.FormatUint(uint64(seqNum), 10) + soh)
	body.WriteString("49=" + c.senderCompID + soh)
	body.WriteString("56=" + c.targetCompID + soh)
	body.WriteString("52=" + utcTimestamp() + soh)

	for _, f := range fields {
		body.WriteString(strconv.Itoa(f.Tag))
		body.WriteByte('=')
		body.WriteString(f.Value)
		body.WriteString(soh)
	}

	message := "8=" + c.beginString + soh
	message += "9=" + strconv.Itoa(body.Len()) + soh
	message += body.String()
	message += "10=" + toChecksum(message) + soh

	return message
}

func (c *Controller) buildMessage(msgType string, fields []Field) string {
	seqNum := c.nextOutgoingSeqNum
	c.nextOutgoingSeqNum++

	return c.buildMessageWithSeqNum(msgType, fields, seqNum)
}

// utcTimestamp formats the current time as a FIX UTCTimestamp
// (YYYYMMDD-HH:MM:SS.sss).
func utcTimestamp() string {
	return time.Now().UTC().Format("20060102-15:04:05.000")
}

// normalize replaces every '|' in message with SOH, unconditionally —
// unlike the decoder package's normalizeMessage, the session path never
// needs to preserve a literal pipe inside a field value, since the wire
// protocol it speaks always uses SOH.
func normalize(message string) string {
	return strings.ReplaceAll(message, "|", soh)
}

// BuildLogon builds a Logon (35=A) message and transitions to
// AwaitingLogon. resetSeqNum sets tag 141=Y and resets both sequence
// counters to 1.
func (c *Controller) BuildLogon(resetSeqNum bool) string {
	fields := []Field{{98, "0"}, {108, strconv.Itoa(c.heartbeatIntervalSeconds)}}

	if resetSeqNum {
		fields = append(fields, Field{141, "Y"})
		c.expectedIncomingSeqNum = 1
		c.nextOutgoingSeqNum = 1
	}

	c.logonSent = true
	c.state = StateAwaitingLogon

	return c.buildMessage("A", fields)
}

// BuildHeartbeat builds a Heartbeat (35=0), echoing testReqID in tag 112
// when non-empty.
func (c *Controller) BuildHeartbeat(testReqID string) string {
	var fields []Field
	if testReqID != "" {
		fields = append(fields, Field{112, testReqID})
	}

	return c.buildMessage("0", fields)
}

// BuildTestRequest builds a TestRequest (35=1) with the required
// TestReqID (112).
func (c *Controller) BuildTestRequest(testReqID string) string {
	return c.buildMessage("1", []Field{{112, testReqID}})
}

// BuildLogout builds a Logout (35=5) and transitions to LogoutSent.
func (c *Controller) BuildLogout(text string) string {
	c.state = StateLogoutSent

	var fields []Field
	if text != "" {
		fields = append(fields, Field{58, text})
	}

	return c.buildMessage("5", fields)
}

// BuildApplicationMessage builds an arbitrary application message
// (35=msgType) carrying fields in the given order.
func (c *Controller) BuildApplicationMessage(msgType string, fields []Field) string {
	return c.buildMessage(msgType, fields)
}

// BuildResendRequest builds a ResendRequest (35=2) for [beginSeqNo,
// endSeqNo]; endSeqNo of 0 means "through the most recent message".
func (c *Controller) BuildResendRequest(beginSeqNo, endSeqNo uint32) string {
	fields := []Field{
		{7, strconv.FormatUint(uint64(beginSeqNo), 10)},
		{16, strconv.FormatUint(uint64(endSeqNo), 10)},
	}

	return c.buildMessage("2", fields)
}

// Consume appends incomingBytes to the controller's internal stream
// buffer and extracts every complete FIX frame found so far. A frame
// runs from the first "8=" in the buffer through the SOH that follows
// its "10=NNN" checksum trailer. A trailer lookalike that isn't followed
// by exactly three digits and an SOH is treated as a false match:
// everything up to and including the SOH in front of it is dropped and
// the search resumes, so a stray SOH+"10="
// inside a misframed stream can't wedge the buffer forever.
func (c *Controller) Consume(incomingBytes string) []string {
	c.streamBuffer.WriteString(normalize(incomingBytes))
	buffer := c.streamBuffer.String()

	var messages []string

	for {
		begin := strings.Index(buffer, "8=")
		if begin < 0 {
			buffer = ""
			break
		}

		if begin > 0 {
			buffer = buffer[begin:]
		}

		trailer := strings.Index(buffer, soh+"10=")
		if trailer < 0 {
			break
		}

		if trailer+8 > len(buffer) {
			break
		}

		c1, c2, c3, end := buffer[trailer+4], buffer[trailer+5], buffer[trailer+6], buffer[trailer+7]
		if !isDigit(c1) || !isDigit(c2) || !isDigit(c3) || end != soh[0] {
			buffer = buffer[trailer+1:]
			continue
		}

		messages = append(messages, buffer[:trailer+8])
		buffer = buffer[trailer+8:]
	}

	c.streamBuffer.Reset()
	c.streamBuffer.WriteString(buffer)

	return messages
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// parsedField is one tag/value pair as they appeared on the wire, kept
// in order.
type parsedField struct {
	tag   int
	value string
}

// parsedMessage is the strict-path parse result: the ordered field list
// plus the two fields the session layer always needs, MsgType and
// MsgSeqNum.
type parsedMessage struct {
	orderedFields     []parsedField
	msgType           string
	sequenceNumber    uint32
	hasSequenceNumber bool
}

// parseErrorCode enumerates why the strict parser rejected a message.
type parseErrorCode int

const (
	errNone parseErrorCode = iota
	errMissingFieldTerminator
	errMalformedTagValue
	errTagNotNumeric
	errInvalidMsgSeqNum
	errMissingMsgType
	errMissingMsgSeqNum
)

type parseError struct {
	code  parseErrorCode
	field int
}

// parseMessage is the strict-path tokenizer: unlike the decoder
// package's lenient splitTags, any malformed token aborts parsing with a
// specific error, since a session must answer a garbled frame rather
// than silently ignore the bad part of it.
func parseMessage(normalized string) (parsedMessage, parseError) {
	var result parsedMessage

	pos := 0
	for pos < len(normalized) {
		end := strings.IndexByte(normalized[pos:], soh[0])
		if end < 0 {
			return parsedMessage{}, parseError{code: errMissingFieldTerminator}
		}

		end += pos

		eq := strings.IndexByte(normalized[pos:end], '=')
		if eq < 0 {
			return parsedMessage{}, parseError{code: errMalformedTagValue}
		}

		eq += pos

		tag, err := strconv.Atoi(normalized[pos:eq])
		if err != nil {
			return parsedMessage{}, parseError{code: errTagNotNumeric}
		}

		value := normalized[eq+1 : end]
		result.orderedFields = append(result.orderedFields, parsedField{tag: tag, value: value})
		pos = end + 1
	}

	for _, f := range result.orderedFields {
		switch f.tag {
		case 35:
			result.msgType = f.value
		case 34:
			n, ok := parseUint(f.value)
			if !ok {
				return parsedMessage{}, parseError{code: errInvalidMsgSeqNum, field: 34}
			}

			result.sequenceNumber = n
			result.hasSequenceNumber = true
		}
	}

	if result.msgType == "" {
		return parsedMessage{}, parseError{code: errMissingMsgType, field: 35}
	}

	if !result.hasSequenceNumber {
		return parsedMessage{}, parseError{code: errMissingMsgSeqNum, field: 34}
	}

	return result, parseError{}
}

func parseErrorText(e parseError) string {
	withField := func(base string) string {
		if e.field > 0 {
			return fmt.Sprintf("%s (tag %d)", base, e.field)
		}

		return base
	}

	switch e.code {
	case errMissingFieldTerminator:
		return withField("Missing SOH-delimited field terminator")
	case errMalformedTagValue:
		return withField("Malformed tag=value field")
	case errTagNotNumeric:
		return withField("Tag is not numeric")
	case errInvalidMsgSeqNum:
		return withField("Invalid MsgSeqNum")
	case errMissingMsgType:
		return withField("Missing MsgType")
	case errMissingMsgSeqNum:
		return withField("Missing MsgSeqNum")
	default:
		return withField("Malformed FIX message")
	}
}

func validateChecksum(normalized string) bool {
	trailer := strings.LastIndex(normalized, soh+"10=")
	if trailer < 0 || trailer+8 != len(normalized) {
		return false
	}

	expected := 0
	for i := trailer + 4; i < trailer+7; i++ {
		if !isDigit(normalized[i]) {
			return false
		}

		expected = expected*10 + int(normalized[i]-'0')
	}

	actual := 0
	for i := 0; i <= trailer; i++ {
		actual = (actual + int(normalized[i])) % 256
	}

	return actual == expected
}

func validateBodyLength(normalized string) bool {
	beginFieldEnd := strings.IndexByte(normalized, soh[0])
	if beginFieldEnd < 0 {
		return false
	}

	bodyFieldEnd := strings.IndexByte(normalized[beginFieldEnd+1:], soh[0])
	if bodyFieldEnd < 0 {
		return false
	}

	bodyFieldEnd += beginFieldEnd + 1

	if !strings.HasPrefix(normalized[beginFieldEnd+1:], "9=") {
		return false
	}

	bodyLenEq := beginFieldEnd + 1 + 1 // position of '=' in "9="

	expectedLen, ok := parseUint(normalized[bodyLenEq+1 : bodyFieldEnd])
	if !ok {
		return false
	}

	trailer := strings.LastIndex(normalized, soh+"10=")
	if trailer < 0 || trailer < bodyFieldEnd {
		return false
	}

	actualLen := uint32(trailer - bodyFieldEnd)

	return actualLen == expectedLen
}

func fieldValue(parsed parsedMessage, tag int) string {
	for _, f := range parsed.orderedFields {
		if f.tag == tag {
			return f.value
		}
	}

	return ""
}

// OnMessage processes one complete inbound FIX frame and returns the
// resulting disposition, outbound responses, and events. Checks run in
// a fixed order: body length and checksum, then a strict parse, then
// CompID agreement, then sequence-number agreement, then a reaction
// specific to the message's type.
func (c *Controller) OnMessage(rawMessage string) Action {
	var action Action

	normalized := normalize(rawMessage)

	if !validateBodyLength(normalized) || !validateChecksum(normalized) {
		action.Disposition = Garbled
		action.Events = append(action.Events, "garbled_message")
		action.OutboundMessages = append(action.OutboundMessages,
			c.buildMessage("3", []Field{{58, "Invalid BodyLength or CheckSum"}}))

		return action
	}

	parsed, parseErr := parseMessage(normalized)
	if parseErr.code != errNone {
		action.Disposition = Garbled
		action.Events = append(action.Events, "garbled_message")
		action.OutboundMessages = append(action.OutboundMessages,
			c.buildMessage("3", []Field{{58, parseErrorText(parseErr)}}))

		return action
	}

	sender := fieldValue(parsed, 49)
	target := fieldValue(parsed, 56)

	if sender != c.targetCompID || target != c.senderCompID {
		action.Disposition = Garbled
		action.Events = append(action.Events, "comp_id_mismatch")
		action.OutboundMessages = append(action.OutboundMessages, c.BuildLogout("CompID mismatch"))
		c.state = StateTerminated

		return action
	}

	if parsed.sequenceNumber > c.expectedIncomingSeqNum {
		action.Disposition = OutOfSync
		action.Events = append(action.Events, "sequence_gap")
		action.OutboundMessages = append(action.OutboundMessages, c.BuildResendRequest(c.expectedIncomingSeqNum, 0))

		return action
	}

	if parsed.sequenceNumber < c.expectedIncomingSeqNum {
		action.Disposition = OutOfSync
		action.Events = append(action.Events, "sequence_too_low")
		action.OutboundMessages = append(action.OutboundMessages, c.BuildLogout("MsgSeqNum too low"))
		c.state = StateTerminated

		return action
	}

	c.expectedIncomingSeqNum++

	if parsed.msgType == "A" {
		c.logonReceived = true

		if !c.logonSent && c.role == RoleAcceptor {
			action.OutboundMessages = append(action.OutboundMessages, c.BuildLogon(false))
		}

		c.state = StateEstablished
		action.Events = append(action.Events, "logon")

		return action
	}

	if !c.logonReceived && parsed.msgType != "5" {
		action.Disposition = OutOfSync
		action.Events = append(action.Events, "logon_required")
		action.OutboundMessages = append(action.OutboundMessages, c.BuildLogout("Expected Logon"))
		c.state = StateTerminated

		return action
	}

	switch parsed.msgType {
	case "1":
		action.Events = append(action.Events, "test_request")
		action.OutboundMessages = append(action.OutboundMessages, c.BuildHeartbeat(fieldValue(parsed, 112)))

		return action

	case "5":
		action.Events = append(action.Events, "logout")

		if c.state != StateLogoutSent {
			action.OutboundMessages = append(action.OutboundMessages, c.BuildLogout("Logout Ack"))
		}

		c.state = StateTerminated

		return action

	case "2":
		action.Events = append(action.Events, "resend_request")

		return action

	case "4":
		if newSeq, ok := parseUint(fieldValue(parsed, 36)); ok && newSeq >= c.expectedIncomingSeqNum {
			c.expectedIncomingSeqNum = newSeq
			action.Events = append(action.Events, "sequence_reset")
		}

		return action

	case "0":
		action.Events = append(action.Events, "heartbeat")

		return action
	}

	action.Events = append(action.Events, "application_message")

	return action
}
