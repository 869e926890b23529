// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

// lazyLogger binds context to whatever the root logger is at call time.
type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) with(ctx []any) []any {
	return append(append(make([]any, 0, len(l.ctx)+len(ctx)), l.ctx...), ctx...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { Root().Trace(msg, l.with(ctx)...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { Root().Debug(msg, l.with(ctx)...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { Root().Info(msg, l.with(ctx)...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { Root().Warn(msg, l.with(ctx)...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { Root().Error(msg, l.with(ctx)...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { Root().Crit(msg, l.with(ctx)...) }
