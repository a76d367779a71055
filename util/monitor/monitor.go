package monitor

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	vaultcommon "github.com/tranvictor/vaultctl/common"
	"github.com/tranvictor/vaultctl/logger"
)

const (
	DefaultPollInterval = 5 * time.Second
	// DefaultLostAfter is how long a hash that no node has ever seen is
	// polled before it is reported lost.
	DefaultLostAfter = 3 * time.Minute
)

type TxInfoReader interface {
	TxInfoFromHash(ctx context.Context, hash common.Hash) (vaultcommon.TxInfo, error)
}

type TxMonitor struct {
	reader       TxInfoReader
	pollInterval time.Duration
	lostAfter    time.Duration
}

func NewGenericTxMonitor(r TxInfoReader) *TxMonitor {
	return &TxMonitor{
		reader:       r,
		pollInterval: DefaultPollInterval,
		lostAfter:    DefaultLostAfter,
	}
}

// WithIntervals overrides polling timings. Zero values keep the current
// setting.
func (m *TxMonitor) WithIntervals(poll, lostAfter time.Duration) *TxMonitor {
	if poll > 0 {
		m.pollInterval = poll
	}
	if lostAfter > 0 {
		m.lostAfter = lostAfter
	}
	return m
}

func (m *TxMonitor) periodicCheck(ctx context.Context, hash common.Hash, info chan<- vaultcommon.TxInfo) {
	defer close(info)
	log := logger.GetForComponent("monitor")
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	startTime := time.Now()
	isOnNode := false
	for {
		var t time.Time
		select {
		case <-ctx.Done():
			info <- vaultcommon.TxInfo{Status: vaultcommon.TxStatusError, Err: ctx.Err()}
			return
		case t = <-ticker.C:
		}
		txinfo, err := m.reader.TxInfoFromHash(ctx, hash)
		switch txinfo.Status {
		case vaultcommon.TxStatusError:
			log.Debug().Err(err).Str("hash", hash.Hex()).Msg("polling failed, retrying")
			continue
		case vaultcommon.TxStatusNotFound:
			if t.Sub(startTime) > m.lostAfter && !isOnNode {
				info <- vaultcommon.TxInfo{Status: vaultcommon.TxStatusLost}
				return
			}
			continue
		case vaultcommon.TxStatusPending:
			isOnNode = true
			continue
		case vaultcommon.TxStatusReverted, vaultcommon.TxStatusDone:
			info <- txinfo
			return
		}
	}
}

// MakeWaitChannel polls hash until it is final or ctx is done. Exactly one
// TxInfo is delivered before the channel is closed.
func (m *TxMonitor) MakeWaitChannel(ctx context.Context, hash common.Hash) <-chan vaultcommon.TxInfo {
	result := make(chan vaultcommon.TxInfo, 1)
	go m.periodicCheck(ctx, hash, result)
	return result
}

func (m *TxMonitor) BlockingWait(ctx context.Context, hash common.Hash) vaultcommon.TxInfo {
	return <-m.MakeWaitChannel(ctx, hash)
}
