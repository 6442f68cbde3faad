package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Семантические: пакеты и use
	SemaInfo              Code = 3000
	SemaError             Code = 3001
	SemaUnknownPackage    Code = 3002
	SemaAliasIsPackage    Code = 3003
	SemaAmbiguousSymbol   Code = 3004
	SemaSymbolNotPublic   Code = 3005
	SemaUndeclaredVarUse  Code = 3006
	SemaVarSelfInit       Code = 3007
	SemaDuplicateLocal    Code = 3008
	SemaTypeAsExpression  Code = 3009
	SemaPackageAsValue    Code = 3010
	SemaEntryPointPrivate Code = 3011

	// Типы
	SemaUnknownType          Code = 3020
	SemaNotAType             Code = 3021
	SemaPublicUsesPrivate    Code = 3022
	SemaCircularType         Code = 3023
	SemaStructRecursion      Code = 3024
	SemaDuplicateMember      Code = 3025
	SemaInvalidArraySize     Code = 3026
	SemaIncrementalNotArray  Code = 3027
	SemaIncrementalWithInit  Code = 3028
	SemaEnumValueOverflow    Code = 3029
	SemaInvalidEnumImplType  Code = 3030
	SemaVoidVariable         Code = 3031
	SemaStructFuncUnknown    Code = 3032
	SemaStructFuncNotStruct  Code = 3033
	SemaStructFuncExternal   Code = 3034
	SemaStructFuncDuplicate  Code = 3035
	SemaArrayValueExternal   Code = 3036
	SemaArrayValueNotVar     Code = 3037
	SemaArrayValueNotIncr    Code = 3038
	SemaUninitializedConst   Code = 3039
	SemaScopeTooDeep         Code = 3040
	SemaIncompleteStructType Code = 3041

	// Контексты константных выражений (по одному на контекст)
	SemaInitNotConstant       Code = 3050
	SemaArgDefaultNotConstant Code = 3051
	SemaArraySizeNotConstant  Code = 3052
	SemaEnumValueNotConstant  Code = 3053
	SemaCaseNotConstant       Code = 3054

	// Несовместимость типов и присваивание
	SemaIncompatibleTypes   Code = 3060
	SemaIncompatibleAssign  Code = 3061
	SemaInvalidCast         Code = 3062
	SemaImplicitNarrowing   Code = 3063
	SemaIncompatiblePointer Code = 3064
	SemaDiscardsConst       Code = 3065
	SemaConstantOutOfRange  Code = 3066
	SemaNotAssignable       Code = 3067
	SemaAssignToConst       Code = 3068
	SemaAssignToFunction    Code = 3069
	SemaAssignToArray       Code = 3070

	// Выражения
	SemaInvalidBinaryOperands Code = 3080
	SemaInvalidUnaryOperand   Code = 3081
	SemaIncompatibleOperands  Code = 3082
	SemaDerefNonPointer       Code = 3083
	SemaSubscriptNonArray     Code = 3084
	SemaSubscriptNotInteger   Code = 3085
	SemaNoMember              Code = 3086
	SemaMemberOnNonStruct     Code = 3087
	SemaCallNonFunction       Code = 3088
	SemaTooFewArguments       Code = 3089
	SemaTooManyArguments      Code = 3090
	SemaExcessElements        Code = 3091
	SemaInvalidInitList       Code = 3092
	SemaElemsofNonArray       Code = 3093
	SemaAddrOfRValue          Code = 3094

	// Инструкции
	SemaInvalidCondition   Code = 3100
	SemaMisplacedBreak     Code = 3101
	SemaMisplacedContinue  Code = 3102
	SemaReturnValueInVoid  Code = 3103
	SemaReturnMissingValue Code = 3104
	SemaSwitchNotInteger   Code = 3105
	SemaDuplicateDefault   Code = 3106
	SemaCaseOutsideSwitch  Code = 3107

	// Предупреждения о неиспользуемом коде
	SemaUnusedVariable     Code = 3200
	SemaUnusedFunction     Code = 3201
	SemaUnusedType         Code = 3202
	SemaUnusedStructMember Code = 3203
	SemaUnusedLocal        Code = 3204

	// Ошибки I/O
	IOLoadFileError Code = 4001

	// Ошибки проекта
	ProjInfo            Code = 5000
	ProjInvalidModule   Code = 5001
	ProjDuplicateModule Code = 5002
	ProjUseCycle        Code = 5003

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var ( // todo расширить описания и использовать как notes
	codeDescription = map[Code]string{
		UnknownCode:               "Unknown error",
		SemaInfo:                  "Semantic information",
		SemaError:                 "Semantic error",
		SemaUnknownPackage:        "Unknown package",
		SemaAliasIsPackage:        "Alias name is a package",
		SemaAmbiguousSymbol:       "Ambiguous symbol",
		SemaSymbolNotPublic:       "Symbol is not public",
		SemaUndeclaredVarUse:      "Use of undeclared identifier",
		SemaVarSelfInit:           "Variable initialized with itself",
		SemaDuplicateLocal:        "Redefinition of local variable",
		SemaTypeAsExpression:      "Type used as expression",
		SemaPackageAsValue:        "Package used as value",
		SemaEntryPointPrivate:     "Entry point must be public",
		SemaUnknownType:           "Unknown type",
		SemaNotAType:              "Symbol is not a type",
		SemaPublicUsesPrivate:     "Public declaration uses non-public type",
		SemaCircularType:          "Circular type definition",
		SemaStructRecursion:       "Struct contains itself",
		SemaDuplicateMember:       "Duplicate struct member",
		SemaInvalidArraySize:      "Invalid array size",
		SemaIncrementalNotArray:   "Incremental variable must be an array",
		SemaIncrementalWithInit:   "Incremental array cannot have an initializer",
		SemaEnumValueOverflow:     "Enum value does not fit the implementation type",
		SemaInvalidEnumImplType:   "Enum implementation type must be an integer",
		SemaVoidVariable:          "Variable has void type",
		SemaStructFuncUnknown:     "Struct function for unknown struct",
		SemaStructFuncNotStruct:   "Struct function prefix is not a struct",
		SemaStructFuncExternal:    "Struct function for struct of another module",
		SemaStructFuncDuplicate:   "Duplicate struct function",
		SemaArrayValueExternal:    "Incremental array value for external variable",
		SemaArrayValueNotVar:      "Incremental array value target is not a variable",
		SemaArrayValueNotIncr:     "Incremental array value target is not incremental",
		SemaUninitializedConst:    "Uninitialized const variable",
		SemaScopeTooDeep:          "Scope nesting too deep",
		SemaIncompleteStructType:  "Incomplete struct type",
		SemaInitNotConstant:       "Initializer is not a compile-time constant",
		SemaArgDefaultNotConstant: "Default argument is not a compile-time constant",
		SemaArraySizeNotConstant:  "Array size is not a compile-time constant",
		SemaEnumValueNotConstant:  "Enum value is not a compile-time constant",
		SemaCaseNotConstant:       "Case value is not a compile-time constant",
		SemaIncompatibleTypes:     "Incompatible types in initialization",
		SemaIncompatibleAssign:    "Incompatible types in assignment",
		SemaInvalidCast:           "Invalid explicit conversion",
		SemaImplicitNarrowing:     "Implicit conversion loses precision",
		SemaIncompatiblePointer:   "Incompatible pointer types",
		SemaDiscardsConst:         "Conversion discards const qualifier",
		SemaConstantOutOfRange:    "Constant value out of range",
		SemaNotAssignable:         "Expression is not assignable",
		SemaAssignToConst:         "Assignment to const location",
		SemaAssignToFunction:      "Assignment to function",
		SemaAssignToArray:         "Assignment to array",
		SemaInvalidBinaryOperands: "Invalid operands for binary operator",
		SemaInvalidUnaryOperand:   "Invalid operand for unary operator",
		SemaIncompatibleOperands:  "Incompatible operands for conditional operator",
		SemaDerefNonPointer:       "Dereference of non-pointer",
		SemaSubscriptNonArray:     "Subscript of non-array",
		SemaSubscriptNotInteger:   "Array subscript is not an integer",
		SemaNoMember:              "No such member",
		SemaMemberOnNonStruct:     "Member access on non-struct",
		SemaCallNonFunction:       "Call of non-function",
		SemaTooFewArguments:       "Too few arguments",
		SemaTooManyArguments:      "Too many arguments",
		SemaExcessElements:        "Excess elements in initializer",
		SemaInvalidInitList:       "Initializer list for non-aggregate type",
		SemaElemsofNonArray:       "elemsof requires an array",
		SemaAddrOfRValue:          "Cannot take the address of an rvalue",
		SemaInvalidCondition:      "Condition is not convertible to bool",
		SemaMisplacedBreak:        "break statement not in loop or switch",
		SemaMisplacedContinue:     "continue statement not in loop",
		SemaReturnValueInVoid:     "Void function returns a value",
		SemaReturnMissingValue:    "Non-void function must return a value",
		SemaSwitchNotInteger:      "Switch condition is not an integer",
		SemaDuplicateDefault:      "Multiple default labels",
		SemaCaseOutsideSwitch:     "case label not in switch",
		SemaUnusedVariable:        "Unused variable",
		SemaUnusedFunction:        "Unused function",
		SemaUnusedType:            "Unused type",
		SemaUnusedStructMember:    "Unused struct member",
		SemaUnusedLocal:           "Unused local variable",
		IOLoadFileError:           "I/O load file error",
		ProjInfo:                  "Project information",
		ProjInvalidModule:         "Invalid module",
		ProjDuplicateModule:       "Duplicate module",
		ProjUseCycle:              "Modules use each other",
		ObsInfo:                   "Observability information",
		ObsTimings:                "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
