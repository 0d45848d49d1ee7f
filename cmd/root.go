package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// 不带子命令时直接启动服务
var rootCmd = &cobra.Command{
	Use:   "photo-gallery",
	Short: "A self-hosted photo gallery with invitation based sharing",
	Run:   runServe,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "env file path (eg: /etc/photo-gallery/.env)")
	cobra.CheckErr(viper.BindPFlag("config_file_path", rootCmd.PersistentFlags().Lookup("config")))
}
