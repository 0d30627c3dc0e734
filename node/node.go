package node

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"net/netip"
	"time"

	"github.com/kostaleonard/leocoin/api"
	"github.com/kostaleonard/leocoin/config"
	"github.com/kostaleonard/leocoin/consensus"
	"github.com/kostaleonard/leocoin/discovery"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/miner"
	"github.com/kostaleonard/leocoin/store"
	"github.com/kostaleonard/leocoin/worker"
)

// Options carries everything a node needs; cmd fills it from config files.
type Options struct {
	Config    *config.ConfigFile
	Consensus *config.ConsensusConfig
	Mining    *config.MiningConfig
	Discovery *config.DiscoveryConfig
	PrivKey   ed25519.PrivateKey
}

// Node owns the shared chain and every long-running task around it.
type Node struct {
	opts    Options
	Chain   *consensus.SynchronizedChain
	Peers   *discovery.PeerList
	archive *store.ChainArchive
	server  *consensus.Server
	api     *api.APIServer
	tasks   []*worker.Task
}

// peerSet merges configured peers with discovered ones.
type peerSet struct {
	static  []discovery.PeerInfo
	dynamic *discovery.PeerList
}

func (p *peerSet) Snapshot() []discovery.PeerInfo {
	out := append([]discovery.PeerInfo{}, p.static...)
	for _, d := range p.dynamic.Snapshot() {
		dup := false
		for _, s := range p.static {
			if s.SameAs(d) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, d)
		}
	}
	return out
}

func (o Options) consensusConfig() consensus.Config {
	c := o.Consensus
	return consensus.Config{
		DialTimeout: time.Duration(c.DialTimeoutMs) * time.Millisecond,
		IOTimeout:   time.Duration(c.IOTimeoutMs) * time.Millisecond,
		PollTimeout: time.Duration(c.PollTimeoutMs) * time.Millisecond,
		MaxPayload:  c.MaxMessageBytes,
		Interval:    time.Duration(c.ExchangeIntervalSeconds) * time.Second,
		RunOnce:     c.RunOnce,
	}
}

// New loads the chain and binds the consensus listener. Nothing runs until
// Start.
func New(opts Options) (*Node, error) {
	archive, err := store.CreateChainArchive(&opts.Config.Store)
	if err != nil {
		return nil, fmt.Errorf("open chain archive: %w", err)
	}
	chain, err := LoadChain(opts.Config.Node.ChainFile, archive, opts.Mining.Difficulty)
	if err != nil {
		_ = archive.Close()
		return nil, err
	}

	n := &Node{
		opts:    opts,
		Chain:   consensus.NewSynchronizedChain(chain),
		Peers:   discovery.NewPeerList(),
		archive: archive,
	}
	serverCfg := opts.consensusConfig()
	serverCfg.Limiter = opts.Consensus.NewLimiter()
	n.server, err = consensus.NewServer(opts.Config.Node.ListenAddr, n.Chain, serverCfg)
	if err != nil {
		_ = archive.Close()
		return nil, fmt.Errorf("start consensus server: %w", err)
	}
	return n, nil
}

func (n *Node) staticPeers() ([]discovery.PeerInfo, error) {
	out := make([]discovery.PeerInfo, 0, len(n.opts.Config.Node.Peers))
	for _, raw := range n.opts.Config.Node.Peers {
		addr, err := netip.ParseAddrPort(raw)
		if err != nil {
			return nil, fmt.Errorf("peer %q: %w", raw, err)
		}
		out = append(out, discovery.PeerInfo{ListenAddr: addr})
	}
	return out, nil
}

// Start launches the server, client, persister and, when configured, the
// miner, the discovery registrar and the HTTP API.
func (n *Node) Start() error {
	cfg := n.opts.Config.Node
	static, err := n.staticPeers()
	if err != nil {
		return err
	}

	n.tasks = append(n.tasks, n.server.Start())
	client := consensus.NewClient(n.Chain, &peerSet{static: static, dynamic: n.Peers}, n.opts.consensusConfig())
	n.tasks = append(n.tasks, client.Start())
	n.tasks = append(n.tasks, (&Persister{Chain: n.Chain, ChainFile: cfg.ChainFile, Archive: n.archive}).Start())

	if cfg.BootstrapAddr != "" {
		self, err := netip.ParseAddrPort(cfg.AdvertiseAddr)
		if err != nil {
			return fmt.Errorf("advertise_addr %q: %w", cfg.AdvertiseAddr, err)
		}
		registrar := &discovery.Registrar{
			BootstrapAddr: cfg.BootstrapAddr,
			Self:          self,
			Peers:         n.Peers,
			Interval:      time.Duration(n.opts.Discovery.IntervalSeconds) * time.Second,
			DialTimeout:   time.Duration(n.opts.Consensus.DialTimeoutMs) * time.Millisecond,
			IOTimeout:     time.Duration(n.opts.Consensus.IOTimeoutMs) * time.Millisecond,
		}
		n.tasks = append(n.tasks, registrar.Start())
	}

	if cfg.Mine {
		recipient, err := config.ResolvePublicKey(cfg, n.opts.PrivKey)
		if err != nil {
			return fmt.Errorf("miner key: %w", err)
		}
		logx.Info("NODE", "mining rewards go to ", recipient)
		n.tasks = append(n.tasks, miner.New(n.Chain, recipient, uint32(n.opts.Mining.Reward)).Start())
	}

	if cfg.APIAddr != "" {
		n.api = api.NewAPIServer(n.Chain, n.Peers, cfg.APIAddr)
		n.api.Start()
	}
	logx.Info("NODE", "started with ", len(n.tasks), " tasks")
	return nil
}

// Stop signals every task, waits up to timeout for each, and closes storage.
func (n *Node) Stop(timeout time.Duration) error {
	for _, t := range n.tasks {
		t.Stop()
	}
	var firstErr error
	for _, t := range n.tasks {
		err, ok := t.Join(timeout)
		if !ok {
			logx.Warn("NODE", "task ", t.Name(), " did not stop within ", timeout)
			continue
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", t.Name(), err)
		}
	}
	if n.api != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = n.api.Shutdown(ctx)
	}
	if err := n.archive.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (n *Node) ServerAddr() string {
	return n.server.Addr().String()
}
