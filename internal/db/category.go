package db

// 任务分类
const (
	CategoryStudy  = "study"
	CategoryLesson = "lesson"
	CategoryChore  = "chore"
)

// CategoryTaskType 描述分类下可选的任务种别
type CategoryTaskType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoryConfig 汇总分类的展示与默认配置
// Subcategories 为该分类下的可选细项，TaskTypes 为空表示该分类不区分种别
type CategoryConfig struct {
	Label          string             `json:"label"`
	Color          string             `json:"color"`
	Subcategories  []string           `json:"subcategories"`
	TaskTypes      []CategoryTaskType `json:"task_types"`
	DefaultMinutes int                `json:"default_minutes"`
}

// CategoryConfigs 与前端共用的分类配置表
var CategoryConfigs = map[string]CategoryConfig{
	CategoryStudy: {
		Label:         "勉強",
		Color:         "#7C3AED",
		Subcategories: []string{"国語", "数学", "英語", "理科", "社会", "その他"},
		TaskTypes: []CategoryTaskType{
			{Value: "homework", Label: "宿題"},
			{Value: "correspondence", Label: "通信講座"},
			{Value: "cram_school", Label: "塾"},
		},
		DefaultMinutes: 30,
	},
	CategoryLesson: {
		Label:         "習い事",
		Color:         "#DB2777",
		Subcategories: []string{"ピアノ", "習字"},
		TaskTypes: []CategoryTaskType{
			{Value: "lesson", Label: "通塾"},
			{Value: "practice", Label: "練習"},
		},
		DefaultMinutes: 30,
	},
	CategoryChore: {
		Label:          "お手伝い",
		Color:          "#0D9488",
		Subcategories:  []string{"洗濯物を畳む", "部屋を片付ける", "その他"},
		DefaultMinutes: 15,
	},
}

// ValidCategory 判断分类取值是否合法
func ValidCategory(category string) bool {
	_, ok := CategoryConfigs[category]
	return ok
}
