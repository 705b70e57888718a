package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"

	"OrderInsight/src/config"
	"OrderInsight/src/datapush"
	"OrderInsight/src/datasource/email"
	"OrderInsight/src/datasource/file"
	"OrderInsight/src/processor"
	"OrderInsight/src/storage"
)

func main() {
	jsonFolder := "./config"
	jsonFile := "config.json"
	dataJsonFile := "analysis.json"
	cfg, dcfg, err := config.LoadConfig(jsonFolder, jsonFile, dataJsonFile)
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}

	// 初始化日志系统
	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		log.Fatal("初始化日志失败:", err)
	}
	defer logger.Close()

	// 城市规范化开启时，目标城市参数同样规范化，保证精确匹配语义不变
	targetCity := cfg.Analysis.TargetCity
	if cfg.Analysis.NormalizeCity {
		targetCity = file.NormalizeCity(targetCity)
	}

	params := processor.Params{
		City:      targetCity,
		Year:      cfg.Analysis.TargetYear,
		TopCities: cfg.Analysis.TopCities,
	}

	store := &processor.ResultStore{}

	// 首次分析：输入表缺失是致命错误，在过滤前终止
	if err := runAnalysis(cfg, dcfg, params, store, logger); err != nil {
		logger.Fatal("初始分析失败: " + err.Error())
		log.Fatal("初始分析失败:", err)
	}

	// 定时刷新
	c := cron.New()
	interval := time.Duration(cfg.Analysis.RefreshInterval)
	if interval <= 0 {
		interval = time.Hour
	}
	cronSpec := fmt.Sprintf("@every %s", interval)

	err = c.AddFunc(cronSpec, func() {
		logger.Info(fmt.Sprintf("开始定时刷新(间隔: %v)...", interval))

		if cfg.Email.Enabled {
			checkDatasetMail(cfg, logger)
		}

		t1 := time.Now()
		if err := runAnalysis(cfg, dcfg, params, store, logger); err != nil {
			logger.Error("定时刷新失败: " + err.Error())
			return
		}
		logger.Info(fmt.Sprintf("刷新完成，耗时%v", time.Since(t1)))

		logger.CheckRotate(cfg)
	})
	if err != nil {
		logger.Error("创建定时任务失败: " + err.Error())
		return
	}
	c.Start()
	defer c.Stop()

	// 数据目录监控：数据集文件更新后立即重新分析
	go watchDataDir(cfg, dcfg, params, store, logger)

	// 信号处理：SIGHUP轮转日志，SIGINT/SIGTERM退出
	go handleSignals(logger)

	// 仪表盘（阻塞）
	dashboard := datapush.NewDashboard(cfg, store, logger)
	logger.Info(fmt.Sprintf("分析服务已启动(城市: %s, 年份: %d, 刷新间隔: %v)",
		params.City, params.Year, interval))
	if err := dashboard.Start(); err != nil {
		logger.Fatal("仪表盘异常退出: " + err.Error())
		log.Fatal("仪表盘异常退出:", err)
	}
}

// runAnalysis 执行一轮完整分析并更新结果与报表
func runAnalysis(cfg *config.Config, dcfg *config.DataConfig,
	params processor.Params, store *processor.ResultStore, logger *storage.Logger) error {

	tables, err := file.LoadTables(cfg, dcfg)
	if err != nil {
		return err
	}

	result := processor.Run(tables.Customers, tables.Orders, tables.Reviews, tables.Payments, params)
	store.Set(result)

	if result.Summary.Rows == 0 {
		logger.Warning(fmt.Sprintf("过滤结果为空(城市: %s, 年份: %d)，各统计量为无数据状态",
			params.City, params.Year))
	} else {
		logger.Info(fmt.Sprintf("分析完成: %d行, 平均支付%s, 平均评分%s, Pearson %s, Spearman %s",
			result.Summary.Rows,
			result.Summary.MeanPayment, result.Summary.MeanReview,
			result.Summary.Pearson, result.Summary.Spearman))
	}

	if cfg.ReportPath == "" {
		return nil
	}
	if err := datapush.WriteReport(cfg.ReportPath, result); err != nil {
		// 报表写失败不影响已产出的内存结果
		logger.Error("写入报表失败: " + err.Error())
		return nil
	}
	logger.Info("报表已写入: " + cfg.ReportPath)

	if cfg.SendEmail.Enabled {
		if err := email.SendReport(cfg, cfg.ReportPath); err != nil {
			logger.Error("报表邮件发送失败: " + err.Error())
		} else {
			logger.Info("报表邮件已发送: " + cfg.SendEmail.To)
		}
	}
	return nil
}

// checkDatasetMail 拉取数据集更新邮件，附件落盘后由目录监控触发重新分析
func checkDatasetMail(cfg *config.Config, logger *storage.Logger) {
	emailClient := email.NewEmailClient(
		cfg.Email.Server,
		cfg.Email.Username,
		cfg.Email.Password)
	handler := email.NewDatasetAttachmentHandler(cfg.Email.TargetSubject, cfg.DataDir)

	if _, err := email.CheckAndProcessEmails(emailClient, handler, logger); err != nil {
		logger.Error("检查数据集邮件失败: " + err.Error())
	}
}

// watchDataDir 监控数据目录，文件更新后重新分析
func watchDataDir(cfg *config.Config, dcfg *config.DataConfig,
	params processor.Params, store *processor.ResultStore, logger *storage.Logger) {

	monitor, err := file.NewDataDirMonitor(cfg.DataDir)
	if err != nil {
		logger.Error("创建数据目录监控失败: " + err.Error())
		return
	}
	defer monitor.Close()

	err = monitor.Watch(func(path string) {
		logger.Info("检测到数据文件更新: " + path)
		if err := runAnalysis(cfg, dcfg, params, store, logger); err != nil {
			logger.Error("数据更新后重新分析失败: " + err.Error())
		}
	})
	if err != nil {
		logger.Error("数据目录监控异常: " + err.Error())
	}
}

// handleSignals SIGHUP触发日志轮转，SIGINT/SIGTERM退出
func handleSignals(logger *storage.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigChan {
		switch sig {
		case syscall.SIGHUP:
			logger.Info("收到SIGHUP，轮转日志...")
			filename := fmt.Sprintf("app.%s.log", time.Now().Format("20060102"))
			if err := logger.Reopen(filename); err != nil {
				logger.Error("日志轮转失败: " + err.Error())
			}
		case syscall.SIGINT, syscall.SIGTERM:
			logger.Info("收到信号: " + sig.String() + "，退出...")
			logger.Close()
			os.Exit(0)
		}
	}
}
