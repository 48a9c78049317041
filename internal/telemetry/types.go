package telemetry

import (
	"fmt"
	"time"
)

// NumColumns is the number of semicolon-separated fields in a housekeeping record.
const NumColumns = 25

// Columns lists the housekeeping record fields in log order.
var Columns = [NumColumns]string{
	"epoch", "sat_search_phase_cnt", "sat_detect_operation_cnt", "signal_demod_phase_cnt",
	"signal_demod_attempt_cnt", "signal_demod_success_cnt", "ack_demod_attempt_cnt",
	"ack_demod_success_cnt", "queued_msg_cnt", "dequeued_unack_msg_cnt", "ack_msg_cnt",
	"sent_fragment_cnt", "ack_fragment_cnt", "cmd_demod_attempt_cnt", "cmd_demod_success_cnt",
	"msg_in_queue", "ack_msg_in_queue", "last_rst",
	"last_mac_result", "last_sat_search_peak_rssi", "time_since_last_sat_search",
	"time_start_last_contact", "time_end_last_contact", "peak_rssi_last_contact",
	"time_peak_rssi_last_contact",
}

// Row is one housekeeping epoch logged by the terminal.
type Row struct {
	Time time.Time // UTC

	SatSearchPhaseCnt     int64
	SatDetectOperationCnt int64
	SignalDemodPhaseCnt   int64
	SignalDemodAttemptCnt int64
	SignalDemodSuccessCnt int64
	AckDemodAttemptCnt    int64
	AckDemodSuccessCnt    int64
	QueuedMsgCnt          int64
	DequeuedUnackMsgCnt   int64
	AckMsgCnt             int64
	SentFragmentCnt       int64
	AckFragmentCnt        int64
	CmdDemodAttemptCnt    int64
	CmdDemodSuccessCnt    int64
	MsgInQueue            int64
	AckMsgInQueue         int64
	LastReset             int64

	LastMACResult MACResult
	PeakRSSI      float64 // last satellite search peak RSSI

	TimeSinceLastSatSearch  int64 // seconds
	TimeStartLastContact    int64
	TimeEndLastContact      int64
	PeakRSSILastContact     float64
	TimePeakRSSILastContact int64
}

// MACResult is the outcome of the terminal's last MAC exchange.
type MACResult int

const (
	MACNone MACResult = iota
	MACSuccess
	MACSatNotDetected
	MACSyncDemodFail
	MACSignalingDemodFail
	MACAckSignalingFail
	MACNoAckInFrame
	MACError
	MACTimeout
	MACBlacklisted
	MACTestSatellite
	MACSatLowPower
)

var macResultNames = [...]string{
	"None",
	"Success",
	"Satellite not detected",
	"Sync demodulation fail",
	"Signaling demodulation fail",
	"Ack signaling fail",
	"No ack in frame",
	"Error",
	"Timeout",
	"Blacklisted",
	"Test satellite",
	"Satellite low power interruption",
}

func (m MACResult) String() string {
	if m >= 0 && int(m) < len(macResultNames) {
		return macResultNames[m]
	}
	return fmt.Sprintf("MAC(%d)", int(m))
}

// MACResults returns every known result code in numeric order.
func MACResults() []MACResult {
	out := make([]MACResult, len(macResultNames))
	for i := range out {
		out[i] = MACResult(i)
	}
	return out
}
