// internal/wallet/store.go

package wallet

import (
	"cmp"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Store 為帳戶索引表（ID → *Account），負責建立與查詢。
// 查詢不經過全域鎖；seq 以原子遞增記錄建立順序，供快照排序與排名平手判定。
type Store struct {
	accounts    *xsync.MapOf[string, *Account]
	seq         atomic.Uint64
	lockTimeout time.Duration
	logger      logrus.FieldLogger
}

// NewStore 建立空的帳戶表；lockTimeout 為單一帳戶操作的取鎖上限（<= 0 表示不設限）。
func NewStore(logger logrus.FieldLogger, lockTimeout time.Duration) *Store {
	return &Store{
		accounts:    xsync.NewMapOf[string, *Account](),
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// Create 以 id 與開戶餘額建立帳戶；開戶餘額不得為負，id 不得重複。
// 同一 id 併發建立時只有一方成功。
func (s *Store) Create(id string, opening decimal.Decimal) (*Account, error) {
	if opening.IsNegative() {
		return nil, fmt.Errorf("create %s with %s: %w", id, opening.String(), ErrInvalidAmount)
	}
	a := newAccount(id, s.seq.Add(1), opening, s.lockTimeout, s.logger)
	if _, loaded := s.accounts.LoadOrStore(id, a); loaded {
		return nil, fmt.Errorf("create %s: %w", id, ErrDuplicateAccount)
	}
	return a, nil
}

// Get 依 id 取得帳戶；不存在時回傳 ErrAccountNotFound。
func (s *Store) Get(id string) (*Account, error) {
	a, ok := s.accounts.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	return a, nil
}

// Snapshot 依建立順序回傳目前所有帳戶。
// 取得後帳戶仍可能被併發修改；呼叫端讀取各帳戶時自行取快照。
func (s *Store) Snapshot() []*Account {
	out := make([]*Account, 0, s.accounts.Size())
	s.accounts.Range(func(_ string, a *Account) bool {
		out = append(out, a)
		return true
	})
	slices.SortFunc(out, func(a, b *Account) int { return cmp.Compare(a.seq, b.seq) })
	return out
}

// Len 回傳帳戶數量。
func (s *Store) Len() int { return s.accounts.Size() }
