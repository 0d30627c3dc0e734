package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/kostaleonard/leocoin/consensus"
	"github.com/kostaleonard/leocoin/discovery"
	"github.com/kostaleonard/leocoin/jsonx"
	"github.com/kostaleonard/leocoin/ledger"
	"github.com/kostaleonard/leocoin/logx"
	"github.com/kostaleonard/leocoin/monitoring"
)

// APIServer exposes a read-only view of the node over HTTP.
type APIServer struct {
	Router     *mux.Router
	Chain      *consensus.SynchronizedChain
	Peers      *discovery.PeerList
	ListenAddr string
	httpServer *http.Server
}

func NewAPIServer(chain *consensus.SynchronizedChain, peers *discovery.PeerList, addr string) *APIServer {
	s := &APIServer{
		Router:     mux.NewRouter(),
		Chain:      chain,
		Peers:      peers,
		ListenAddr: addr,
	}
	s.SetupRoutes()
	return s
}

// SetupRoutes configures the API routes
func (s *APIServer) SetupRoutes() {
	s.Router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.Router.HandleFunc("/chain", s.handleChain).Methods(http.MethodGet)
	s.Router.HandleFunc("/chain/raw", s.handleChainRaw).Methods(http.MethodGet)
	s.Router.HandleFunc("/blocks/{index:[0-9]+}", s.handleBlock).Methods(http.MethodGet)
	s.Router.HandleFunc("/peers", s.handlePeers).Methods(http.MethodGet)
	s.Router.HandleFunc("/balances", s.handleBalances).Methods(http.MethodGet)
	s.Router.Handle("/metrics", monitoring.Handler()).Methods(http.MethodGet)
}

// Start serves in the background until Shutdown.
func (s *APIServer) Start() {
	s.httpServer = &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logx.Info("API", "listening on ", s.ListenAddr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Error("API", "server failed: ", err)
		}
	}()
}

func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

type statusResponse struct {
	consensus.Summary
	Peers int `json:"peers"`
}

type balanceResponse struct {
	Key       string `json:"key"`
	Received  string `json:"received"`
	Sent      string `json:"sent"`
	Minted    string `json:"minted"`
	Balance   string `json:"balance"`
	Overdrawn bool   `json:"overdrawn"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := jsonx.Marshal(v)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *APIServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Summary: s.Chain.Summary()}
	if s.Peers != nil {
		resp.Peers = s.Peers.Len()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *APIServer) handleChain(w http.ResponseWriter, r *http.Request) {
	chain, _ := s.Chain.Snapshot()
	writeJSON(w, http.StatusOK, chain)
}

func (s *APIServer) handleChainRaw(w http.ResponseWriter, r *http.Request) {
	data, version := s.Chain.Encoded()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Chain-Version", strconv.FormatUint(version, 10))
	_, _ = w.Write(data)
}

func (s *APIServer) handleBlock(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "bad block index", http.StatusBadRequest)
		return
	}
	chain, _ := s.Chain.Snapshot()
	if index >= chain.Len() {
		http.Error(w, "block not found", http.StatusNotFound)
		return
	}
	b := chain.Blocks[index]
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"index": index,
		"hash":  b.Hash(),
		"block": b,
	})
}

func (s *APIServer) handlePeers(w http.ResponseWriter, r *http.Request) {
	peers := []discovery.PeerInfo{}
	if s.Peers != nil {
		peers = s.Peers.Snapshot()
	}
	writeJSON(w, http.StatusOK, peers)
}

func (s *APIServer) handleBalances(w http.ResponseWriter, r *http.Request) {
	chain, _ := s.Chain.Snapshot()
	accounts := ledger.Sorted(ledger.Balances(chain))
	out := make([]balanceResponse, 0, len(accounts))
	for _, a := range accounts {
		balance, overdrawn := a.Balance()
		out = append(out, balanceResponse{
			Key:       a.Key.String(),
			Received:  a.Received.Dec(),
			Sent:      a.Sent.Dec(),
			Minted:    a.Minted.Dec(),
			Balance:   balance.Dec(),
			Overdrawn: overdrawn,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
