package discovery

import (
	"net/netip"
	"time"

	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/network"
	"github.com/kostaleonard/leocoin/worker"
)

const (
	DefaultRegisterInterval = 20 * time.Second
	DefaultKeepalive        = 60 * time.Second
)

// Registrar keeps a node registered with the bootstrap server and mirrors
// the server's peer list into the local PeerList.
type Registrar struct {
	BootstrapAddr string
	Self          netip.AddrPort
	Peers         *PeerList
	Interval      time.Duration
	DialTimeout   time.Duration
	IOTimeout     time.Duration
}

// RegisterOnce announces Self and replaces the local peer list with the
// bootstrap server's answer.
func (r *Registrar) RegisterOnce() error {
	conn, err := network.Dial(r.BootstrapAddr, r.DialTimeout, r.IOTimeout, network.DefaultMaxMessageSize)
	if err != nil {
		return err
	}
	defer conn.Close()

	reply, err := conn.Request(&network.RegisterPeer{Addr: network.SockAddrFrom(r.Self)}, network.CommandSendPeerList)
	if err != nil {
		return err
	}
	peers := FromEntries(reply.(*network.SendPeerList).Peers)
	r.Peers.Replace(peers, r.Self)
	logx.Debug("DISCOVERY", "bootstrap returned ", len(peers), " peers")
	return nil
}

// Start registers every Interval until stopped.
func (r *Registrar) Start() *worker.Task {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultRegisterInterval
	}
	return worker.Start("discovery", func(t *worker.Task) error {
		for !t.ShouldStop() {
			if err := r.RegisterOnce(); err != nil {
				logx.Warn("DISCOVERY", "register with ", r.BootstrapAddr, " failed: ", err)
			}
			t.Sleep(interval)
		}
		return nil
	})
}
