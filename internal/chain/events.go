package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// LastDepositTimestamp returns the block time of the latest deposit made by address.
func (c *Custody) LastDepositTimestamp(ctx context.Context, address common.Address) (uint64, bool, error) {
	return c.latestEventTime(ctx, c.depositFilter, address)
}

// LastWithdrawalTimestamp returns the block time of the latest withdrawal paid to address.
func (c *Custody) LastWithdrawalTimestamp(ctx context.Context, address common.Address) (uint64, bool, error) {
	return c.latestEventTime(ctx, c.withdrawalFilter, address)
}

// latestEventTime scans backwards from the chain head in log_batch_size windows
// and stops at the first window containing a matching log.
func (c *Custody) latestEventTime(ctx context.Context, filter eventFilter, address common.Address) (uint64, bool, error) {
	head, err := callRPC(ctx, c, "block number", func() (uint64, error) {
		return c.backend.BlockNumber(ctx)
	})
	if err != nil {
		return 0, false, err
	}

	fromBlock := c.settings.FromBlock
	if head < fromBlock {
		return 0, false, nil
	}

	topics := make([][]common.Hash, filter.topicPos+1)
	if filter.topicPos > 0 {
		topics[0] = []common.Hash{filter.id}
	}
	topics[filter.topicPos] = []common.Hash{common.BytesToHash(address.Bytes())}

	batchSize := c.settings.LogBatchSize
	for end := head; ; {
		start := fromBlock
		if end-fromBlock+1 > batchSize {
			start = end - batchSize + 1
		}

		query := ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(start),
			ToBlock:   new(big.Int).SetUint64(end),
			Addresses: []common.Address{c.address},
			Topics:    topics,
		}
		logs, err := callRPC(ctx, c, "filter logs", func() ([]types.Log, error) {
			return c.backend.FilterLogs(ctx, query)
		})
		if err != nil {
			return 0, false, err
		}
		c.logger.Debugf("Found %d %s events in batch [%d-%d]", len(logs), filter.name, start, end)

		if latest, ok := latestLog(logs); ok {
			header, err := callRPC(ctx, c, "header by number", func() (*types.Header, error) {
				return c.backend.HeaderByNumber(ctx, new(big.Int).SetUint64(latest.BlockNumber))
			})
			if err != nil {
				return 0, false, err
			}
			return header.Time, true, nil
		}

		if start <= fromBlock {
			return 0, false, nil
		}
		end = start - 1
	}
}

func latestLog(logs []types.Log) (types.Log, bool) {
	var latest types.Log
	found := false
	for _, l := range logs {
		if l.Removed {
			continue
		}
		if !found || l.BlockNumber > latest.BlockNumber ||
			(l.BlockNumber == latest.BlockNumber && l.Index > latest.Index) {
			latest = l
			found = true
		}
	}
	return latest, found
}
