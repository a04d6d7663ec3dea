// Package deploy 提供部署类型的共享定义，供 xctx 包的请求级 context 传播使用。
package deploy
