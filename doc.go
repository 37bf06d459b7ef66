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

/*
Package tableagg 是一个内存表分组聚合引擎。

对表中每个不同的分组键，引擎对一个或多个输入列执行声明的归约，并且每个分组恰好输出一行。

# 核心特性

• 声明式聚合 - sum、avg、std、median、percentile、unique、weighted_avg 等 23 种聚合
• 列重命名 - "new = source" 语法
• 结构型聚合 - count、count_where、partition（嵌套表）、formula（表达式）
• 确定性输出 - 分组按首次出现顺序输出，与并行度无关
• 并行归约 - 按分组键哈希分片到协程池，支持 context 取消
• Arrow 互通 - 通过 arrowio 包与 Apache Arrow 记录互相转换

# 入门示例

	package main

	import (
		"context"
		"fmt"

		"github.com/rulego/tableagg"
		"github.com/rulego/tableagg/spec"
		"github.com/rulego/tableagg/types"
		"github.com/rulego/tableagg/utils/table"
	)

	func main() {
		trades := types.MustTable(
			types.MustColumn("sym", "AAPL", "MSFT", "AAPL"),
			types.MustColumn("qty", 100, 50, 300),
			types.MustColumn("price", 10.0, 20.0, 11.0),
		)

		engine := tableagg.New()
		out, err := engine.Apply(context.Background(), trades, []string{"sym"},
			spec.Must(spec.Sum("total = qty")),
			spec.Must(spec.WeightedAvg("qty", "vwap = price")),
			spec.Must(spec.Count("n")),
		)
		if err != nil {
			panic(err)
		}
		table.Print(out)
	}

# 错误处理

所有错误都可以用 errors.Is 判断类型：

	out, err := engine.Apply(ctx, t, []string{"sym"}, specs...)
	switch {
	case errors.Is(err, types.ErrColumnNotFound):
	case errors.Is(err, types.ErrSchemaConflict):
	case errors.Is(err, types.ErrCancelled):
	}

依赖表结构的校验都在读取任何行之前完成，失败时不会返回部分结果。

# 配置

	engine := tableagg.New(
		tableagg.WithWorkers(8),
		tableagg.WithNullOrdering(types.NullsLast),
		tableagg.WithEmptySumAsZero(true),
		tableagg.WithLogLevel(logger.DEBUG),
	)

也可以从 YAML 加载配置：

	cfg, err := types.LoadConfig(data)
	engine := tableagg.New(tableagg.WithConfig(cfg))
*/
package tableagg
