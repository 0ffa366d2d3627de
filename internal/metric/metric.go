// Package metric defines the metric identifier, value, and snapshot types
// shared between the collectors and the snapshot consumer.
package metric

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ID is a stable string identifier for a metric. The well-known identifiers
// below cover the built-in collectors; any other string is a custom metric
// id defined by the user's configuration (e.g. a custom-file entry).
type ID string

// Well-known metric identifiers.
const (
	CPUUsage         ID = "cpu_usage"
	RAMUsage         ID = "ram_usage"
	RAMUsed          ID = "ram_used"
	RAMTotal         ID = "ram_total"
	LoadAvg          ID = "load_avg"
	Uptime           ID = "uptime"
	NetworkDetails   ID = "network_details"
	DiskUsage        ID = "disk_usage"
	CPUTemp          ID = "cpu_temp"
	FanSpeed         ID = "fan_speed"
	GPUTemp          ID = "gpu_temp"
	GPUUtil          ID = "gpu_util"
	WeatherTemp      ID = "weather_temp"
	WeatherCondition ID = "weather_condition"
	DayOfWeek        ID = "day_of_week"
	CodeDelta        ID = "code_delta"
)

// labels maps well-known ids to their short display labels.
var labels = map[ID]string{
	CPUUsage:         "CPU",
	RAMUsage:         "RAM %",
	RAMUsed:          "RAM GB",
	RAMTotal:         "RAM Max",
	LoadAvg:          "Load",
	Uptime:           "Uptime",
	NetworkDetails:   "Network",
	DiskUsage:        "Disk",
	CPUTemp:          "CPU Temp",
	FanSpeed:         "Fan",
	GPUTemp:          "GPU Temp",
	GPUUtil:          "GPU Util",
	WeatherTemp:      "Temp",
	WeatherCondition: "Weather",
	DayOfWeek:        "Day",
	CodeDelta:        "Delta",
}

// Parse converts an identifier string to an ID. Well-known strings map to
// their constants; anything else passes through unchanged as a custom id,
// so Parse(id.String()) == id always holds.
func Parse(s string) ID { return ID(s) }

// String returns the stable identifier string.
func (id ID) String() string { return string(id) }

// IsCustom reports whether the id is user-defined rather than well-known.
func (id ID) IsCustom() bool {
	_, ok := labels[id]
	return !ok
}

// Label returns the human display label for the id. Custom ids default to
// the identifier string itself.
func (id ID) Label() string {
	if l, ok := labels[id]; ok {
		return l
	}
	return string(id)
}

// Rate is a per-interface network throughput pair in bytes per second.
type Rate struct {
	Rx uint64
	Tx uint64
}

// Kind discriminates the variants of a Value.
type Kind uint8

// Value variants. There is no implicit coercion between them; consumers
// must switch on Kind (or use the checked extractors).
const (
	KindNone Kind = iota
	KindFloat
	KindInt
	KindString
	KindNetwork
)

// Value is a tagged union over the metric value variants.
// The zero Value is KindNone ("no current value").
type Value struct {
	kind Kind
	f    float64
	i    int64
	s    string
	net  map[string]Rate
}

// None is the absent value.
var None = Value{}

// Float wraps a float64 as a Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Int wraps an int64 as a Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Str wraps a string as a Value.
func Str(s string) Value { return Value{kind: KindString, s: s} }

// Network wraps a per-interface rate map as a Value. The map is owned by
// the Value after the call.
func Network(m map[string]Rate) Value { return Value{kind: KindNetwork, net: m} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// AsFloat returns the float payload and whether the value holds one.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsInt returns the integer payload and whether the value holds one.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsString returns the string payload and whether the value holds one.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsNetwork returns the per-interface rate map and whether the value holds one.
func (v Value) AsNetwork() (map[string]Rate, bool) { return v.net, v.kind == KindNetwork }

// display renders a value for log summaries.
func (v Value) display() string {
	switch v.kind {
	case KindFloat:
		return fmt.Sprintf("%.1f", v.f)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindNetwork:
		return "<map>"
	default:
		return "none"
	}
}

// clone deep-copies the value; only the network variant carries a reference.
func (v Value) clone() Value {
	if v.kind != KindNetwork {
		return v
	}
	m := make(map[string]Rate, len(v.net))
	for k, r := range v.net {
		m[k] = r
	}
	return Value{kind: KindNetwork, net: m}
}

// Snapshot is one complete, atomically-published set of metric values.
// Absence of a key means "no current value", not an error.
type Snapshot struct {
	Values     map[ID]Value
	CapturedAt time.Time
	DayOfWeek  string
}

// NewSnapshot returns an empty snapshot stamped now.
func NewSnapshot() Snapshot {
	return Snapshot{
		Values:     make(map[ID]Value),
		CapturedAt: time.Now(),
		DayOfWeek:  "Unknown",
	}
}

// Clone returns a deep copy safe for the caller to hold after the
// publisher has moved on.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Values:     make(map[ID]Value, len(s.Values)),
		CapturedAt: s.CapturedAt,
		DayOfWeek:  s.DayOfWeek,
	}
	for k, v := range s.Values {
		out.Values[k] = v.clone()
	}
	return out
}

// Summary renders the snapshot for logging: the entry count plus up to
// three entries in sorted key order.
func (s Snapshot) Summary() string {
	keys := make([]ID, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	n := len(keys)
	if n > 3 {
		keys = keys[:3]
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, s.Values[k].display()))
	}
	suffix := ""
	if n > 3 {
		suffix = ", ..."
	}
	return fmt.Sprintf("count=%d sample=[%s%s]", n, strings.Join(parts, ", "), suffix)
}
