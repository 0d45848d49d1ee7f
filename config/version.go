package config

// 构建时通过 -ldflags 注入
var (
	Version    = "dev"
	CommitHash = "n/a"
)

// IsProduction release 构建且带有提交哈希
func IsProduction() bool {
	return Version == "release" && CommitHash != "" && CommitHash != "n/a"
}

// IsDevelopment 判断是否为开发环境
func IsDevelopment() bool {
	return Version == "dev"
}
