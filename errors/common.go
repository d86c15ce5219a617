package errors

func DecodeRecordErr(err error) error {
	return E(Decode, "cannot decode transaction record", err)
}

// SinkWriteErr returns a formated error for a failed batch write
func SinkWriteErr(batchID string, err error) error {
	return E(SinkWrite, "writing batch "+batchID+" failed", err)
}
