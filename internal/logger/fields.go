package logger

import "log/slog"

// Standard field keys for structured logging across the target core.
const (
	KeyTraceID    = "trace_id"
	KeySubsystem  = "subsystem"   // subsystem NQN
	KeyHostNQN    = "host_nqn"    // host NQN
	KeyHostID     = "host_id"     // host identifier (hostid)
	KeyClientAddr = "client_addr" // transport peer address
	KeyQID        = "qid"         // queue ID (0 = admin)
	KeyCntlID     = "cntlid"      // controller ID
	KeyConnID     = "conn_id"     // internal connection ID
	KeyTransport  = "transport"   // transport name (tcp, rdma, ...)
	KeyOffset     = "offset"      // register byte offset
	KeyRegister   = "register"    // register name (cap, vs, cc, csts)
	KeySize       = "size"        // property access size in bytes
	KeyValue      = "value"       // raw register value
	KeyStatus     = "status"      // fabric status code
	KeyError      = "error"
	KeyDurationMs = "duration_ms"
)

// TraceID returns a slog.Attr for the request correlation ID.
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// Subsystem returns a slog.Attr for the subsystem NQN.
func Subsystem(nqn string) slog.Attr { return slog.String(KeySubsystem, nqn) }

// HostNQN returns a slog.Attr for the host NQN.
func HostNQN(nqn string) slog.Attr { return slog.String(KeyHostNQN, nqn) }

// ClientAddr returns a slog.Attr for the transport peer address.
func ClientAddr(addr string) slog.Attr { return slog.String(KeyClientAddr, addr) }

// QID returns a slog.Attr for the queue ID.
func QID(qid uint16) slog.Attr { return slog.Uint64(KeyQID, uint64(qid)) }

// CntlID returns a slog.Attr for the controller ID.
func CntlID(id uint16) slog.Attr { return slog.Uint64(KeyCntlID, uint64(id)) }

// ConnID returns a slog.Attr for the internal connection ID.
func ConnID(id uint64) slog.Attr { return slog.Uint64(KeyConnID, id) }

// Transport returns a slog.Attr for the transport name.
func Transport(name string) slog.Attr { return slog.String(KeyTransport, name) }

// Offset returns a slog.Attr for a register byte offset.
func Offset(off uint32) slog.Attr { return slog.Uint64(KeyOffset, uint64(off)) }

// Register returns a slog.Attr for a register name.
func Register(name string) slog.Attr { return slog.String(KeyRegister, name) }

// Size returns a slog.Attr for a property access size.
func Size(n uint8) slog.Attr { return slog.Uint64(KeySize, uint64(n)) }

// Value returns a slog.Attr for a raw register value.
func Value(v uint64) slog.Attr { return slog.Uint64(KeyValue, v) }

// Status returns a slog.Attr for a fabric status code.
func Status(code uint16) slog.Attr { return slog.Uint64(KeyStatus, uint64(code)) }

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }
