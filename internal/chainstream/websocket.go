package chainstream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/chain-monitor/internal/classifier"
	"github.com/rovshanmuradov/chain-monitor/internal/decoder"
)

// WebsocketSource is the one concrete TransactionSource this repo ships:
// it dials the upstream stream endpoint and issues a Solana
// logsSubscribe-shaped JSON-RPC subscription filtered to the monitored
// program IDs. The wire transport itself is out of scope (spec.md §1); this
// is a swappable reference implementation.
type WebsocketSource struct {
	url        string
	programIDs []solana.PublicKey
	logger     *zap.Logger
}

// NewWebsocketSource builds a source bound to wsURL, filtered to
// programIDs.
func NewWebsocketSource(wsURL string, programIDs []solana.PublicKey, logger *zap.Logger) *WebsocketSource {
	return &WebsocketSource{url: wsURL, programIDs: programIDs, logger: logger.Named("chainstream")}
}

type subscribeRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// wireInstruction is the wire shape of one instruction invocation within a
// transaction notification.
type wireInstruction struct {
	ProgramID string   `json:"programId"`
	Accounts  []string `json:"accounts"`
	DataB64   string   `json:"data"`
}

type wireTokenBalance struct {
	Mint    string `json:"mint"`
	PreRaw  uint64 `json:"preRaw"`
	PostRaw uint64 `json:"postRaw"`
}

type wireTransaction struct {
	Signature     string             `json:"signature"`
	Instructions  []wireInstruction  `json:"instructions"`
	TokenBalances []wireTokenBalance `json:"tokenBalances"`
}

type wireNotification struct {
	Method string `json:"method"`
	Params struct {
		Result struct {
			Value wireTransaction `json:"value"`
		} `json:"result"`
	} `json:"params"`
}

// Run dials the endpoint, subscribes, and streams decoded transaction
// updates until ctx is canceled or the connection fails.
func (s *WebsocketSource) Run(ctx context.Context, updates chan<- TransactionUpdate) error {
	conn, _, _, err := ws.Dial(ctx, s.url)
	if err != nil {
		return &StreamError{Reason: "dial failed", Err: err}
	}
	defer conn.Close()

	filters := make([]string, len(s.programIDs))
	for i, pk := range s.programIDs {
		filters[i] = pk.String()
	}

	req := subscribeRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "logsSubscribe",
		Params: []interface{}{
			map[string]interface{}{"mentions": filters},
			map[string]interface{}{"commitment": "confirmed"},
		},
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return &StreamError{Reason: "encode subscribe request", Err: err}
	}
	if err := wsutil.WriteClientMessage(conn, ws.OpText, payload); err != nil {
		return &StreamError{Reason: "send subscribe request", Err: err}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, _, err := wsutil.ReadServerData(conn)
		if err != nil {
			return &StreamError{Reason: "read server data", Err: err}
		}

		var n wireNotification
		if err := json.Unmarshal(msg, &n); err != nil {
			s.logger.Debug("malformed stream message", zap.Error(err))
			continue
		}
		if n.Method != "logsNotification" {
			continue
		}

		update, err := toTransactionUpdate(n.Params.Result.Value)
		if err != nil {
			s.logger.Debug("malformed transaction payload", zap.Error(err))
			continue
		}

		select {
		case updates <- update:
		case <-ctx.Done():
			return nil
		}
	}
}

func toTransactionUpdate(wt wireTransaction) (TransactionUpdate, error) {
	instructions := make([]decoder.RawInstruction, 0, len(wt.Instructions))
	for _, wi := range wt.Instructions {
		programID, err := solana.PublicKeyFromBase58(wi.ProgramID)
		if err != nil {
			return TransactionUpdate{}, fmt.Errorf("parse program id: %w", err)
		}
		accounts := make([]solana.PublicKey, 0, len(wi.Accounts))
		for _, a := range wi.Accounts {
			pk, err := solana.PublicKeyFromBase58(a)
			if err != nil {
				return TransactionUpdate{}, fmt.Errorf("parse account: %w", err)
			}
			accounts = append(accounts, pk)
		}
		data, err := base64.StdEncoding.DecodeString(wi.DataB64)
		if err != nil {
			return TransactionUpdate{}, fmt.Errorf("decode instruction data: %w", err)
		}
		instructions = append(instructions, decoder.RawInstruction{
			ProgramID: programID,
			Accounts:  accounts,
			Data:      data,
		})
	}

	balances := make([]classifier.TokenBalanceRecord, 0, len(wt.TokenBalances))
	for _, wb := range wt.TokenBalances {
		balances = append(balances, classifier.TokenBalanceRecord{
			Mint:    wb.Mint,
			PreRaw:  wb.PreRaw,
			PostRaw: wb.PostRaw,
		})
	}

	return TransactionUpdate{
		Signature:     wt.Signature,
		Instructions:  instructions,
		TokenBalances: balances,
	}, nil
}
