package storage

import (
	"dm-lab/domain/messaging"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Key layout. Numeric ids are zero padded to 20 digits so that the
// lexicographical order of keys is the numeric order of ids.
//
//	conv:{conversation}                    conversation record
//	pair:{low}:{high}                      pair-uniqueness index -> conversation id
//	member:{conversation}:{participant}    membership record
//	inbox:{participant}:{conversation}     participant -> conversation index (no value)
//	msg:{conversation}:{message id}        message record
//	att:{attachment id}                    attachment metadata
//	blob:{attachment id}                   attachment payload, verbatim
//	profile:{participant}                  directory entry
const (
	conversationPrefix = "conv:"
	pairPrefix         = "pair:"
	memberPrefix       = "member:"
	inboxPrefix        = "inbox:"
	messagePrefix      = "msg:"
	attachmentPrefix   = "att:"
	blobPrefix         = "blob:"
	profilePrefix      = "profile:"

	messageSequenceKey    = "seq:message"
	attachmentSequenceKey = "seq:attachment"
)

func conversationKey(id uuid.UUID) []byte {
	return []byte(conversationPrefix + id.String())
}

func pairKey(a, b string) []byte {
	low, high := messaging.Pair(a, b)
	return []byte(fmt.Sprintf("%s%s:%s", pairPrefix, low, high))
}

func memberKey(conversationID uuid.UUID, participantID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", memberPrefix, conversationID, participantID))
}

func memberPrefixFor(conversationID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%s:", memberPrefix, conversationID))
}

func inboxKey(participantID string, conversationID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", inboxPrefix, participantID, conversationID))
}

func inboxPrefixFor(participantID string) []byte {
	return []byte(fmt.Sprintf("%s%s:", inboxPrefix, participantID))
}

func messageKey(conversationID uuid.UUID, id uint64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", messagePrefix, conversationID, id))
}

func messagePrefixFor(conversationID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%s:", messagePrefix, conversationID))
}

func attachmentKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", attachmentPrefix, id))
}

func blobKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", blobPrefix, id))
}

func profileKey(participantID string) []byte {
	return []byte(profilePrefix + participantID)
}

// lastSegment returns what follows the last ':' of a key.
func lastSegment(key []byte) string {
	s := string(key)
	return s[strings.LastIndexByte(s, ':')+1:]
}

func parseConversationSegment(key []byte) (uuid.UUID, error) {
	return uuid.Parse(lastSegment(key))
}

func parseIDSegment(key []byte) (uint64, error) {
	return strconv.ParseUint(lastSegment(key), 10, 64)
}

// seekLast returns a key positioned after every key sharing prefix, for reverse iteration.
func seekLast(prefix []byte) []byte {
	return append(append([]byte{}, prefix...), 0xFF)
}
