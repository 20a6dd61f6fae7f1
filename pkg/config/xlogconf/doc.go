// Package xlogconf 提供 xlinelog 的声明式配置加载。
//
// 配置文件为 YAML 或 JSON（按扩展名识别），经 koanf 解析为 [Config]
// 后可直接构建 LineLog：
//
//	cfg, err := xlogconf.Load("/etc/app/linelog.yaml")
//	if err != nil { ... }
//	l, err := cfg.Open()
//
// # 配置字段
//
//	path: /var/log/app.log    # 日志文件路径（必填）
//	truncate_at: 1000         # 保留行数上限，0 或 -1 表示不限制
//	max_message_size: 1024    # 单条消息渲染上限（字节），缺省用默认值，-1 表示不限制
//	file_mode: "0600"         # 日志文件权限（八进制字符串，可省略）
//	dir_perm: "0750"          # 自动建父目录的权限（八进制字符串，可省略）
//
// # 变更监视
//
// [Watch] 基于 fsnotify 监视配置文件，带防抖地在变更后重新加载并回调。
// 监视的是配置文件所在目录而非文件本身：编辑器保存时往往先删后建或
// 原子重命名，直接监视文件会丢失事件。
package xlogconf
