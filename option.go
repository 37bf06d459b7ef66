/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tableagg

import (
	"io"
	"os"

	"github.com/rulego/tableagg/formula"
	"github.com/rulego/tableagg/logger"
	"github.com/rulego/tableagg/types"
)

// Option 表示对 Engine 默认行为的修改配置。
type Option func(*Engine)

// WithConfig 使用完整配置替换默认配置。
// 之后的选项在该配置基础上继续修改。
//
// 示例:
//
//	cfg, err := types.LoadConfig(yamlBytes)
//	engine := tableagg.New(tableagg.WithConfig(cfg))
func WithConfig(config types.Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithWorkers 设置归约阶段的并行协程数，0 表示 CPU 数
func WithWorkers(workers int) Option {
	return func(e *Engine) {
		e.config.WorkerConfig.Workers = workers
	}
}

// WithParallelThreshold 设置并行执行的最小行数，低于该行数时单协程执行
func WithParallelThreshold(rows int) Option {
	return func(e *Engine) {
		e.config.WorkerConfig.ParallelThreshold = rows
	}
}

// WithChunkSize 设置分区阶段每个分块的行数
func WithChunkSize(rows int) Option {
	return func(e *Engine) {
		e.config.WorkerConfig.ChunkSize = rows
	}
}

// WithHighThroughput 使用大表预设：更多协程、更大的分块
func WithHighThroughput() Option {
	return func(e *Engine) {
		e.config.WorkerConfig = types.HighThroughputConfig().WorkerConfig
	}
}

// WithSingleThreaded 所有阶段都在调用协程上执行
func WithSingleThreaded() Option {
	return func(e *Engine) {
		e.config.WorkerConfig = types.SingleThreadedConfig().WorkerConfig
	}
}

// WithNullOrdering 设置 min/max/sorted_first/sorted_last/median/percentile 的空值位置
func WithNullOrdering(ordering types.NullOrdering) Option {
	return func(e *Engine) {
		e.config.NullOrdering = ordering
	}
}

// WithEmptySumAsZero 全空分组的 sum/abs_sum/weighted_sum 返回 0 而不是 null
func WithEmptySumAsZero(enabled bool) Option {
	return func(e *Engine) {
		e.config.EmptySumAsZero = enabled
	}
}

// WithUndefinedAsNaN std/var 样本数不足两个时返回 NaN 而不是 null
func WithUndefinedAsNaN(enabled bool) Option {
	return func(e *Engine) {
		e.config.UndefinedAsNaN = enabled
	}
}

// WithFormulaEvaluator 替换 formula 聚合使用的表达式求值器。
// 若求值器同时实现 formula.Compiler，表达式会在绑定阶段预编译。
//
// 示例:
//
//	engine := tableagg.New(tableagg.WithFormulaEvaluator(
//		formula.NewExprEvaluator(expr.Function("spread", spreadFn)),
//	))
func WithFormulaEvaluator(evaluator formula.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = evaluator
	}
}

// WithLogger 设置引擎使用的日志记录器，不影响全局默认日志记录器。
//
// 示例:
//
//	z, _ := zap.NewProduction()
//	engine := tableagg.New(tableagg.WithLogger(logger.NewZapLogger(z)))
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithLogLevel 设置日志级别。
// 未设置日志记录器时创建一个输出到标准输出的记录器。
//
// 示例:
//
//	// 输出状态转换
//	engine := tableagg.New(tableagg.WithLogLevel(logger.DEBUG))
func WithLogLevel(level logger.Level) Option {
	return func(e *Engine) {
		if e.log == nil {
			e.log = logger.NewLogger(level, os.Stdout)
			return
		}
		e.log.SetLevel(level)
	}
}

// WithLogOutput 设置日志输出目标和级别
func WithLogOutput(output io.Writer, level logger.Level) Option {
	return func(e *Engine) {
		e.log = logger.NewLogger(level, output)
	}
}

// WithDiscardLog 禁用引擎的所有日志输出
func WithDiscardLog() Option {
	return func(e *Engine) {
		e.log = logger.NewDiscardLogger()
	}
}
