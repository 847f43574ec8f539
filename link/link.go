package link

import (
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gr-butler/issbeacon/clock"
	logger "github.com/sirupsen/logrus"
)

// Radio is the wireless interface the supervisor keeps alive.
type Radio interface {
	// Up reports whether the link is associated and usable.
	Up() bool
	// Join initiates (re)association. It returns once the attempt has been
	// started; the supervisor polls Up for the outcome.
	Join() error
}

const (
	pollInterval = 500 * time.Millisecond
	acquireMs    = uint32(10000) // reconnect budget
)

// Supervisor keeps the network link up. Ensure is the only intentionally
// blocking call in steady-state operation and is bounded by acquireMs.
type Supervisor struct {
	radio Radio
	clk   clock.Clock
}

func NewSupervisor(radio Radio, clk clock.Clock) *Supervisor {
	return &Supervisor{radio: radio, clk: clk}
}

// Up reports the current link status without side effects.
func (s *Supervisor) Up() bool {
	return s.radio.Up()
}

// Ensure returns true immediately when the link is up. Otherwise it starts a
// reconnect and polls at 500ms intervals for up to 10s, returning whether
// the link came up within the budget.
func (s *Supervisor) Ensure(nowMs uint32) bool {
	if s.radio.Up() {
		return true
	}
	logger.Info("Link down, reconnecting...")
	if err := s.radio.Join(); err != nil {
		logger.Errorf("Failed to start reconnect [%v]", err)
		return false
	}
	start := s.clk.Millis()
	for clock.Elapsed(s.clk.Millis(), start) < acquireMs {
		if s.radio.Up() {
			logger.Info("Link up")
			return true
		}
		s.clk.Sleep(pollInterval)
	}
	logger.Error("Reconnect timed out")
	return false
}

// NMRadio drives a NetworkManager-managed wireless interface. Association
// state comes from the kernel operstate file; reconnection shells out to
// nmcli the same way external health checks shell out to ping.
type NMRadio struct {
	Iface string
	SSID  string
	PSK   string
}

func NewNMRadio(iface, ssid, psk string) *NMRadio {
	return &NMRadio{Iface: iface, SSID: ssid, PSK: psk}
}

func (r *NMRadio) Up() bool {
	data, err := os.ReadFile("/sys/class/net/" + r.Iface + "/operstate")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == "up"
}

func (r *NMRadio) Join() error {
	// -w 0 returns as soon as the attempt is queued; the supervisor polls
	// operstate for the outcome
	if r.SSID == "" {
		// no credentials supplied, retry whatever profile is saved
		return exec.Command("nmcli", "-w", "0", "device", "connect", r.Iface).Run()
	}
	logger.Infof("Joining [%v] on [%v]", r.SSID, r.Iface)
	return exec.Command("nmcli", "-w", "0", "device", "wifi", "connect", r.SSID,
		"password", r.PSK, "ifname", r.Iface).Run()
}
