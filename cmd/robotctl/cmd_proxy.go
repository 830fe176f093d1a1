package main

import (
	"errors"
	"strconv"

	"robotconsole/internal/service"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	proxyEnabled  bool
	proxyAddr     string
	proxyUser     string
	proxyPassword string
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Show or change robot proxy settings",
}

var proxyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show proxy settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runProxyShow,
}

var proxySetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Update proxy settings; flags that are not given keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE:  runProxySet,
}

func init() {
	proxySetCmd.Flags().BoolVar(&proxyEnabled, "enabled", false, "enable proxy")
	proxySetCmd.Flags().StringVar(&proxyAddr, "addr", "", "proxy address host:port")
	proxySetCmd.Flags().StringVar(&proxyUser, "user", "", "proxy username")
	proxySetCmd.Flags().StringVar(&proxyPassword, "password", "", "proxy password")

	proxyCmd.AddCommand(proxyShowCmd, proxySetCmd)
	rootCmd.AddCommand(proxyCmd)
}

func loadProxyForm(cmd *cobra.Command, arg string) (*service.ProxyForm, error) {
	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()
	if _, err := services.Directory.View(ctx, id); err != nil {
		return nil, err
	}
	return services.ProxyForms.Form(id), nil
}

func printProxy(form *service.ProxyForm) {
	v := form.Values()
	password := ""
	if v.ProxyPassword != "" {
		password = "******"
	}
	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.AppendBulk([][]string{
		{"id", strconv.FormatInt(v.ID, 10)},
		{"proxy_enabled", strconv.FormatBool(v.ProxyEnabled)},
		{"proxy_ip", v.ProxyIP},
		{"proxy_user", v.ProxyUser},
		{"proxy_password", password},
	})
	table.Render()
}

func runProxyShow(cmd *cobra.Command, args []string) error {
	form, err := loadProxyForm(cmd, args[0])
	if err != nil {
		return err
	}
	printProxy(form)
	return nil
}

func runProxySet(cmd *cobra.Command, args []string) error {
	form, err := loadProxyForm(cmd, args[0])
	if err != nil {
		return err
	}

	values := form.Values()
	flags := cmd.Flags()
	if flags.Changed("enabled") {
		values.ProxyEnabled = proxyEnabled
	}
	if flags.Changed("addr") {
		values.ProxyIP = proxyAddr
	}
	if flags.Changed("user") {
		values.ProxyUser = proxyUser
	}
	if flags.Changed("password") {
		values.ProxyPassword = proxyPassword
	}
	form.Set(values)

	ctx, cancel := commandContext(cmd)
	defer cancel()
	if err := form.Submit(ctx); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				printf("%s: %s\n", f.Field, f.Message)
			}
		}
		return err
	}
	printProxy(form)
	return nil
}
