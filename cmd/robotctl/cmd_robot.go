package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"robotconsole/internal/model"
	"robotconsole/internal/service"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	listKeyword  string
	listStatus   string
	listPage     int
	listPageSize int

	createReq model.RobotCreateRequest
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List robots",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var viewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one robot",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a robot and wait for it to initialize",
	Long: `Create a robot record on the backend.

After the backend acknowledges the request the command keeps waiting for the
configured settle delay (robot.create_settle_delay, 20s by default) before it
reports success.`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

var stateCmd = &cobra.Command{
	Use:   "state <id>",
	Short: "Refresh robot state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenuAction(cmd, args, (*service.ActionMenu).Refresh)
	},
}

var restartClientCmd = &cobra.Command{
	Use:   "restart-client <id>",
	Short: "Restart the robot client container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenuAction(cmd, args, (*service.ActionMenu).RestartClient)
	},
}

var restartServerCmd = &cobra.Command{
	Use:   "restart-server <id>",
	Short: "Restart the robot server container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenuAction(cmd, args, (*service.ActionMenu).RestartServer)
	},
}

func init() {
	listCmd.Flags().StringVar(&listKeyword, "keyword", "", "filter by keyword")
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
	listCmd.Flags().IntVar(&listPage, "page", 1, "page index")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 20, "page size")

	createCmd.Flags().StringVar(&createReq.RobotCode, "code", "", "robot code (5-64 chars, letter first)")
	createCmd.Flags().BoolVar(&createReq.ProxyEnabled, "proxy", false, "enable proxy")
	createCmd.Flags().StringVar(&createReq.ProxyIP, "proxy-addr", "", "proxy address host:port")
	createCmd.Flags().StringVar(&createReq.ProxyUser, "proxy-user", "", "proxy username")
	createCmd.Flags().StringVar(&createReq.ProxyPassword, "proxy-password", "", "proxy password")

	rootCmd.AddCommand(listCmd, viewCmd, createCmd, stateCmd, restartClientCmd, restartServerCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid robot id %q", s)
	}
	return id, nil
}

func formatUnix(ts int64) string {
	if ts <= 0 {
		return "-"
	}
	return time.Unix(ts, 0).Format("2006-01-02 15:04:05")
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	list, err := services.Directory.List(ctx, &model.RobotListQuery{
		Keyword:   listKeyword,
		Status:    listStatus,
		PageIndex: listPage,
		PageSize:  listPageSize,
	})
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"ID", "Code", "WeChat", "Nickname", "Status", "Proxy", "Last Login"})
	for _, r := range list.Items {
		proxy := "-"
		if r.ProxyEnabled {
			proxy = r.ProxyIP
		}
		table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			r.RobotCode,
			r.WeChatID,
			r.Nickname,
			string(r.Status),
			proxy,
			formatUnix(r.LastLoginAt),
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "Total", strconv.FormatInt(list.Total, 10)})
	table.Render()
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	r, err := services.Directory.View(ctx, id)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	table.AppendBulk([][]string{
		{"id", strconv.FormatInt(r.ID, 10)},
		{"robot_code", r.RobotCode},
		{"owner", r.Owner},
		{"device", fmt.Sprintf("%s (%s)", r.DeviceName, r.DeviceID)},
		{"wechat_id", r.WeChatID},
		{"nickname", r.Nickname},
		{"status", string(r.Status)},
		{"redis_db", strconv.Itoa(r.RedisDB)},
		{"error_message", r.ErrorMessage},
		{"proxy_enabled", strconv.FormatBool(r.ProxyEnabled)},
		{"proxy_ip", r.ProxyIP},
		{"proxy_user", r.ProxyUser},
		{"last_login_at", formatUnix(r.LastLoginAt)},
		{"created_at", formatUnix(r.CreatedAt)},
		{"updated_at", formatUnix(r.UpdatedAt)},
	})
	table.Render()
	return nil
}

func runCreate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	req := createReq
	_, err := services.Creator.Create(ctx, &req, service.CreateHooks{
		OnSuccess: func(r *model.Robot) {
			printf("robot %d created, waiting for initialization...\n", r.ID)
		},
		OnRefresh: services.Directory.Refresh,
	})
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			printf("%s: %s\n", f.Field, f.Message)
		}
	}
	return err
}

func runMenuAction(cmd *cobra.Command, args []string, action func(*service.ActionMenu, context.Context) error) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()
	return action(services.Menus.Menu(id), ctx)
}
