package model

// JoinSpec 属性连接参数
type JoinSpec struct {
	// 要素类一侧的连接字段
	JoinField string `json:"join_field" form:"join_field"`
	// csv 一侧的连接字段, 为空时与 JoinField 同名
	CsvField string `json:"csv_field" form:"csv_field"`
	// csv 编码, 为空时自动猜测
	Encoding string `json:"encoding" form:"encoding"`
}

// SymbologySpec 符号化参数
type SymbologySpec struct {
	// single / unique / graduated
	Renderer string `json:"renderer" form:"renderer"`
	// unique/graduated 的分类字段
	Field string `json:"field" form:"field"`
	// graduated 的分级数, 缺省 5
	Classes int `json:"classes" form:"classes"`
	// single 的填充色, "r,g,b"
	Color string `json:"color" form:"color"`
	// graduated 的渐变起止色, "r,g,b"
	RampFrom string `json:"ramp_from" form:"ramp_from"`
	RampTo   string `json:"ramp_to" form:"ramp_to"`
}

// ChartSpec 制图参数
type ChartSpec struct {
	Field string `json:"field" form:"field"`
	// auto / hist / bar
	Kind string `json:"kind" form:"kind"`
	// hist 的分箱数, 缺省 16
	Bins int `json:"bins" form:"bins"`
	// bar 的最大条数, 超出折叠为 (other), 缺省 12
	MaxBars int    `json:"max_bars" form:"max_bars"`
	Title   string `json:"title" form:"title"`
}

// MapsetSpec 地图集参数
type MapsetSpec struct {
	Name string   `json:"name" form:"name"`
	Tag  string   `json:"tag" form:"tag"`
	IDs  []string `json:"ids" form:"ids"`
}
