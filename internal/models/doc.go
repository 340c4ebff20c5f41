// Package models defines the core domain models for SpendWise.
//
// # Models
//
//   - User: registered account; owns personal expenses and budgets
//   - Expense: a single spend, optionally attached to a shared wallet
//   - Wallet: a shared pot with members, split records and a running total
//   - Member, SplitRecord, Share: wallet membership and bill-split state
//   - Budget: per-user monthly spending limits
//
// # Design Principles
//
// 1. **ID strings, not pointers**: relationships use ID strings to avoid
// circular references between models.
//
// 2. **Exact money**: every amount is a decimal.Decimal, never a float64,
// so the shares of a split always sum to the expense amount to the cent.
//
// 3. **Derived balances**: per-member balances are never stored; they are
// recomputed from the split history on every read (see internal/calculator).
//
// 4. **Append-only splits**: split records are created once and never
// deleted or edited; a share's settled flag moves false -> true and never
// back.
package models
