package claims

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"Veritas/internal/dfs"
	"Veritas/internal/identity"
	"Veritas/internal/topic"
	"Veritas/internal/types"
)

// encodeEntry serializes an entry as a FlatBuffers VerificationRecord.
func encodeEntry(e *Entry) []byte {
	builder := flatbuffers.NewBuilder(256)

	idVec := builder.CreateByteVector(e.ID[:])
	issuerVec := builder.CreateByteVector(e.Issuer.Key())
	subjectVec := builder.CreateByteVector(e.Subject.Key())
	topicStr := builder.CreateString(e.Topic.String())

	// Optional refs are only written when set
	var rejectVec, descVec, dataVec flatbuffers.UOffsetT
	if !e.RejectReason.IsZero() {
		rejectVec = builder.CreateByteVector(e.RejectReason[:])
	}
	if !e.Description.IsZero() {
		descVec = builder.CreateByteVector(e.Description[:])
	}
	if !e.Data.IsZero() {
		dataVec = builder.CreateByteVector(e.Data[:])
	}

	types.VerificationRecordStart(builder)
	types.VerificationRecordAddId(builder, idVec)
	types.VerificationRecordAddIssuer(builder, issuerVec)
	types.VerificationRecordAddSubject(builder, subjectVec)
	types.VerificationRecordAddTopic(builder, topicStr)
	types.VerificationRecordAddStatus(builder, int8(e.Status))
	types.VerificationRecordAddCreationDate(builder, uint64(e.CreationDate))
	types.VerificationRecordAddCreationBlock(builder, e.CreationBlock)
	types.VerificationRecordAddExpirationDate(builder, uint64(e.ExpirationDate))
	if rejectVec != 0 {
		types.VerificationRecordAddRejectReason(builder, rejectVec)
	}
	types.VerificationRecordAddDisableSubVerifications(builder, e.DisableSubVerifications)
	if descVec != 0 {
		types.VerificationRecordAddDescription(builder, descVec)
	}
	if dataVec != 0 {
		types.VerificationRecordAddData(builder, dataVec)
	}
	builder.Finish(types.VerificationRecordEnd(builder))

	return builder.FinishedBytes()
}

// decodeEntry parses a VerificationRecord.
func decodeEntry(data []byte) (e Entry, retErr error) {
	// FlatBuffers panics on malformed data, recover gracefully
	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("malformed verification record")
		}
	}()

	if len(data) < 8 {
		return Entry{}, fmt.Errorf("verification record too short")
	}

	rec := types.GetRootAsVerificationRecord(data, 0)

	if len(rec.IdBytes()) != len(ID{}) {
		return Entry{}, fmt.Errorf("invalid id size: %d", len(rec.IdBytes()))
	}
	copy(e.ID[:], rec.IdBytes())

	var err error
	if e.Issuer, err = identity.FromKey(rec.IssuerBytes()); err != nil {
		return Entry{}, fmt.Errorf("decode issuer:\n%w", err)
	}

	if e.Subject, err = identity.FromKey(rec.SubjectBytes()); err != nil {
		return Entry{}, fmt.Errorf("decode subject:\n%w", err)
	}

	if e.Topic, err = topic.Parse(string(rec.Topic())); err != nil {
		return Entry{}, fmt.Errorf("decode topic:\n%w", err)
	}

	e.Status = Status(rec.Status())
	e.CreationDate = int64(rec.CreationDate())
	e.CreationBlock = rec.CreationBlock()
	e.ExpirationDate = int64(rec.ExpirationDate())
	e.DisableSubVerifications = rec.DisableSubVerifications()
	e.RejectReason = refFrom(rec.RejectReasonBytes())
	e.Description = refFrom(rec.DescriptionBytes())
	e.Data = refFrom(rec.DataBytes())

	return e, nil
}

// refFrom copies a 32-byte vector into a ref; anything else is the zero ref.
func refFrom(b []byte) dfs.Ref {
	var r dfs.Ref
	if len(b) == len(r) {
		copy(r[:], b)
	}
	return r
}
