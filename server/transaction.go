// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNoTransaction      = errors.New("no transaction selected")
	ErrUnknownTransaction = errors.New("unknown transaction")
)

// Transactions manages server-side transactions. The transaction a request runs in is
// passed explicitly, since a request may be handled by any worker.
type Transactions interface {
	// Begin starts a new transaction and returns its ID
	Begin() (int64, error)
	// Select makes the transaction current for the request being handled
	Select(txId int64) error
	Commit(txId int64) error
	Rollback(txId int64) error
	// Suspend releases the transaction after a request without ending it
	Suspend(txId int64) error
}

type memoryTx struct {
	selected bool
}

// MemoryTransactions tracks transaction IDs in memory. It hands out increasing IDs
// starting at 1.
type MemoryTransactions struct {
	mutex      sync.Mutex
	nextId     int64
	active     map[int64]*memoryTx
	committed  int
	rolledBack int
}

// NewMemoryTransactions returns an empty MemoryTransactions
func NewMemoryTransactions() *MemoryTransactions {
	return &MemoryTransactions{
		nextId: 1,
		active: make(map[int64]*memoryTx),
	}
}

func (m *MemoryTransactions) Begin() (int64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	txId := m.nextId
	m.nextId++
	m.active[txId] = &memoryTx{selected: true}
	return txId, nil
}

func (m *MemoryTransactions) Select(txId int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	tx, err := m.get(txId)
	if err != nil {
		return err
	}
	if tx.selected {
		return fmt.Errorf("transaction %d is in use by another request", txId)
	}
	tx.selected = true
	return nil
}

func (m *MemoryTransactions) Commit(txId int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, err := m.get(txId); err != nil {
		return err
	}
	delete(m.active, txId)
	m.committed++
	return nil
}

func (m *MemoryTransactions) Rollback(txId int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, err := m.get(txId); err != nil {
		return err
	}
	delete(m.active, txId)
	m.rolledBack++
	return nil
}

func (m *MemoryTransactions) Suspend(txId int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	tx, err := m.get(txId)
	if err != nil {
		return err
	}
	tx.selected = false
	return nil
}

// Active returns the number of open transactions
func (m *MemoryTransactions) Active() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.active)
}

// Committed returns the number of committed transactions
func (m *MemoryTransactions) Committed() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.committed
}

// RolledBack returns the number of rolled back transactions
func (m *MemoryTransactions) RolledBack() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.rolledBack
}

func (m *MemoryTransactions) get(txId int64) (*memoryTx, error) {
	tx, ok := m.active[txId]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTransaction, txId)
	}
	return tx, nil
}
